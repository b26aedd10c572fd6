package common

const (
	KEY_CURRENT_PRICE = "current_price:%s"
)

const (
	DefaultComparisonName = "Price comparison"
	DefaultListLimit      = 20
)
