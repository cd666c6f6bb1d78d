package models

// Requests for the HTTP API. Defined in domain for consistency and reuse.

type EvaluateRequest struct {
	Symbol  string              `json:"symbol" validate:"required"`
	Metrics map[string]*float64 `json:"metrics" validate:"required"`
	Price   float64             `json:"price" validate:"gte=0"`
}

type CreateAlertRequest struct {
	Type         string            `json:"type" validate:"required,oneof=threshold trend confidence"`
	Symbol       string            `json:"symbol" validate:"required"`
	Conditions   AlertConditions   `json:"conditions" validate:"required"`
	Notification AlertNotification `json:"notification"`
}

type UpdateAlertRequest struct {
	Conditions   *AlertConditions   `json:"conditions,omitempty"`
	Notification *AlertNotification `json:"notification,omitempty"`
	IsActive     *bool              `json:"is_active,omitempty"`
}

type AlertHistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}

type PositionSizeRequest struct {
	Prediction     float64   `json:"prediction" validate:"gte=-1,lte=1"` // predicted fractional move
	Confidence     float64   `json:"confidence" validate:"gte=0,lte=1"`
	CurrentPrice   float64   `json:"current_price" validate:"gt=0"`
	AccountBalance float64   `json:"account_balance" validate:"gt=0"`
	PriceHistory   []float64 `json:"price_history"`
}

type BacktestRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	From   string `json:"from" validate:"required"` // RFC3339 or unix seconds
	To     string `json:"to" validate:"required"`
}
