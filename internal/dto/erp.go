package dto

// ERPPriceRequest is the body posted to the ERP price endpoint.
type ERPPriceRequest struct {
	StockCodes []string `json:"stockCodes"`
}
