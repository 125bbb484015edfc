package daraja

// Callback is the envelope the gateway posts back once the customer has acted
// on the push prompt (or it timed out).
type Callback struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// StkCallback carries the outcome of a single push request. ResultCode 0
// means the customer authorized the charge.
type StkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
}

// Authorized reports whether the customer approved the charge.
func (c StkCallback) Authorized() bool {
	return c.ResultCode == 0
}
