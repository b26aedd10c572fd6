package dto

// UploadedItem is one row of a user-supplied price list.
type UploadedItem struct {
	StockCode             string   `json:"stockCode" validate:"max=64"`
	UploadedPurchasePrice *float64 `json:"uploadedPurchasePrice,omitempty" validate:"omitempty,gte=0"`
	UploadedSalesPrice    *float64 `json:"uploadedSalesPrice,omitempty" validate:"omitempty,gte=0"`
	UploadedShelfPrice    *float64 `json:"uploadedShelfPrice,omitempty" validate:"omitempty,gte=0"`
	UploadedDate          *string  `json:"uploadedDate,omitempty"`
}

// CurrentPriceRecord is the authoritative price of a stock code as reported by the ERP.
type CurrentPriceRecord struct {
	StockID              *int64   `json:"stockId"`
	StockCode            string   `json:"stockCode"`
	StockName            string   `json:"stockName"`
	CategoryCode         *string  `json:"categoryCode"`
	SubCategory          *string  `json:"subCategory"`
	CurrentPurchasePrice *float64 `json:"currentPurchasePrice"`
	CurrentSalesPrice    *float64 `json:"currentSalesPrice"`
	AvgSalesPrice30Days  *float64 `json:"avgSalesPrice30Days"`
	CurrentMargin        *float64 `json:"currentMargin"`
	LastUpdateDate       *string  `json:"lastUpdateDate"`
}

type UploadedComparison struct {
	UploadedItem
	CalculatedMargin *float64 `json:"calculatedMargin"`
}

type ComparisonMetrics struct {
	PurchasePriceDiff        *float64 `json:"purchasePriceDiff"`
	PurchasePriceDiffPercent *float64 `json:"purchasePriceDiffPercent"`
	SalesPriceDiff           *float64 `json:"salesPriceDiff"`
	SalesPriceDiffPercent    *float64 `json:"salesPriceDiffPercent"`
	MarginDiff               *float64 `json:"marginDiff"`
	Recommendation           string   `json:"recommendation"`
	SuggestedSalesPrice      *float64 `json:"suggestedSalesPrice"`
}

type ComparisonResult struct {
	StockCode  string              `json:"stockCode"`
	Found      bool                `json:"found"`
	Uploaded   UploadedComparison  `json:"uploaded"`
	Current    *CurrentPriceRecord `json:"current"`
	Comparison *ComparisonMetrics  `json:"comparison"`
}

type SummaryStats struct {
	TotalProducts             int     `json:"totalProducts"`
	FoundProducts             int     `json:"foundProducts"`
	NotFoundProducts          int     `json:"notFoundProducts"`
	AvgPurchasePriceDiff      float64 `json:"avgPurchasePriceDiff"`
	AvgSalesPriceDiff         float64 `json:"avgSalesPriceDiff"`
	ProductsWithPriceIncrease int     `json:"productsWithPriceIncrease"`
	ProductsWithPriceDecrease int     `json:"productsWithPriceDecrease"`
	ProductsNeedingUpdate     int     `json:"productsNeedingUpdate"`
}

// ReconcileResult is the output of one reconciliation run.
type ReconcileResult struct {
	Products []ComparisonResult `json:"products"`
	Summary  SummaryStats       `json:"summary"`
}

// CompareRequest is the JSON body accepted by the comparison endpoint.
type CompareRequest struct {
	Name  string         `json:"name" validate:"max=120"`
	Save  bool           `json:"save"`
	Items []UploadedItem `json:"items" validate:"dive"`
}

type CompareUploadParam struct {
	Name     string
	FileName string
	Save     bool
}

// CompareResponse mirrors the success shape consumed by the dashboard.
type CompareResponse struct {
	Success  bool               `json:"success"`
	ID       string             `json:"id,omitempty"`
	Summary  SummaryStats       `json:"summary"`
	Products []ComparisonResult `json:"products"`
}

type ListComparisonParam struct {
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
	Name   string `query:"name" validate:"max=120"`
	Since  string `query:"since" validate:"omitempty,datetime=2006-01-02"`
}

type ComparisonOverview struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	FileName              string       `json:"fileName,omitempty"`
	TotalProducts         int          `json:"totalProducts"`
	FoundProducts         int          `json:"foundProducts"`
	NotFoundProducts      int          `json:"notFoundProducts"`
	ProductsNeedingUpdate int          `json:"productsNeedingUpdate"`
	Summary               SummaryStats `json:"summary"`
	CreatedAt             string       `json:"createdAt"`
}

type ComparisonDetail struct {
	ComparisonOverview
	Products []ComparisonResult `json:"products"`
}
