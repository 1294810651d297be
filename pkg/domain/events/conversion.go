package events

// ConversionRequested is emitted when an auto-conversion starts.
type ConversionRequested struct {
	Meta
	Currency      string  `json:"currency"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	Mode          string  `json:"mode"`
}

// ConversionCompleted is emitted after the ledger was credited.
type ConversionCompleted struct {
	Meta
	Currency      string  `json:"currency"`
	Amount        float64 `json:"amount"`
	Stablecoin    string  `json:"stablecoin"`
	AmountToMint  float64 `json:"amountToMint"`
	UserID        string  `json:"userId"`
	TransactionID string  `json:"transactionId"`
	Authoritative bool    `json:"authoritative"`
}

// ConversionFailed is emitted for any failed auto-conversion.
type ConversionFailed struct {
	Meta
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
	Kind     string  `json:"kind"`
	Reason   string  `json:"reason"`
}

// NewConversionRequested builds a ConversionRequested event.
func NewConversionRequested(code string, amount float64, method, mode string) *ConversionRequested {
	return &ConversionRequested{
		Meta:          newMeta(),
		Currency:      code,
		Amount:        amount,
		PaymentMethod: method,
		Mode:          mode,
	}
}

// NewConversionCompleted builds a ConversionCompleted event.
func NewConversionCompleted(
	code string,
	amount float64,
	stablecoin string,
	amountToMint float64,
	userID, transactionID string,
	authoritative bool,
) *ConversionCompleted {
	return &ConversionCompleted{
		Meta:          newMeta(),
		Currency:      code,
		Amount:        amount,
		Stablecoin:    stablecoin,
		AmountToMint:  amountToMint,
		UserID:        userID,
		TransactionID: transactionID,
		Authoritative: authoritative,
	}
}

// NewConversionFailed builds a ConversionFailed event.
func NewConversionFailed(code string, amount float64, kind, reason string) *ConversionFailed {
	return &ConversionFailed{
		Meta:     newMeta(),
		Currency: code,
		Amount:   amount,
		Kind:     kind,
		Reason:   reason,
	}
}

func (e ConversionRequested) Type() string { return EventTypeConversionRequested.String() }
func (e ConversionCompleted) Type() string { return EventTypeConversionCompleted.String() }
func (e ConversionFailed) Type() string    { return EventTypeConversionFailed.String() }
