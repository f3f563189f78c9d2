package constvars

const (
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"

	// Auth messages
	LoginSuccess  = "successfully login"
	LogoutSuccess = "successfully logout"

	// Order messages
	OrderCreatedSuccess    = "order created successfully"
	OrderGetSuccess        = "get order successfully"
	OrderListSuccess       = "get orders successfully"
	OrderUpdatedSuccess    = "order updated successfully"
	OrderTransitionSuccess = "order status updated successfully"
	OrderLabelPrintable    = "order label is printable"

	// Result messages
	ResultGetSuccess      = "get result successfully"
	ResultListSuccess     = "get results successfully"
	ResultReviewedSuccess = "result reviewed successfully"
	ResultIngestedSuccess = "result ingested successfully"
)
