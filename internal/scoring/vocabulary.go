package scoring

// The fixed raw-metric vocabulary. Keys arrive from upstream connectors in
// technical / social / fundamental / astrological namespaces; missing keys
// are legal and scored at the neutral default.

// defaultRange returns the conservative fallback bounds used before any
// historical sample exists for a key.
func defaultRange(key string) (min, max float64, ok bool) {
	switch key {
	// technical
	case "rsi_1h", "rsi_4h", "rsi_1d":
		return 0, 100, true
	case "macd_histogram":
		return -5, 5, true
	case "ma_ratio_50_200":
		return 0.5, 1.5, true
	case "bollinger_position":
		return -1, 1, true
	case "atr_pct":
		return 0, 0.2, true

	// social
	case "galaxyScore", "altRank":
		return 0, 100, true
	case "socialVolume":
		return 0, 500000, true
	case "tweetSentiment":
		return -1, 1, true
	case "redditActivity":
		return 0, 50000, true

	// fundamental / market / on-chain
	case "marketCapUsd":
		return 1e6, 1e12, true
	case "volume24hUsd":
		return 1e4, 1e11, true
	case "priceChange24hPct":
		return -50, 50, true
	case "activeAddresses":
		return 0, 2e6, true
	case "txVolumeUsd":
		return 1e4, 1e11, true

	// astrological
	case "moonPhase":
		return 0, 1, true
	case "mercuryRetrograde":
		return 0, 1, true
	case "jupiterAspect", "saturnAspect", "marsAspect":
		return 0, 360, true
	}
	return 0, 0, false
}
