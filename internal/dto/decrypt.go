package dto

// GrantRequest carries a signed decryption authorization produced by
// the account's long-term key.
type GrantRequest struct {
	EphemeralPublicKey string   `json:"ephemeral_public_key" validate:"required"`
	Contracts          []string `json:"contracts" validate:"required,min=1"`
	StartTimestamp     int64    `json:"start_timestamp" validate:"required"`
	DurationDays       int64    `json:"duration_days" validate:"required,gt=0"`
	Signature          string   `json:"signature" validate:"required"`
}

// DecryptPair names one handle with the contract it belongs to.
type DecryptPair struct {
	Handle   string `json:"handle" validate:"required,ciphertext_handle"`
	Contract string `json:"contract" validate:"required"`
}

// DecryptBatchRequest redeems a grant against a batch of handles.
type DecryptBatchRequest struct {
	Grant GrantRequest  `json:"grant" validate:"required"`
	Pairs []DecryptPair `json:"pairs" validate:"required,min=1,dive"`
}

// DecryptedEntry is one decrypted primitive in a batch response.
type DecryptedEntry struct {
	Handle string `json:"handle"`
	Value  string `json:"value"`
	IsBool bool   `json:"is_bool"`
	Bool   bool   `json:"bool,omitempty"`
}

// DecryptBatchResponse returns every decrypted primitive, or nothing
// when any pair in the batch was rejected.
type DecryptBatchResponse struct {
	Results []DecryptedEntry `json:"results"`
}
