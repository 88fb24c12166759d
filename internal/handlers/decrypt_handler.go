package handlers

import (
	"encoding/hex"
	"net/http"
	"strings"

	"cipherledger/internal/authz"
	"cipherledger/internal/dto"
	"cipherledger/internal/errors"
	"cipherledger/internal/models"

	"github.com/labstack/echo/v4"
)

// DecryptMetricsInterface records decrypt boundary counters
type DecryptMetricsInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordBatchSize(size int)
}

// DecryptHandler redeems signed grants against the decryption service
type DecryptHandler struct {
	service authz.DecryptionServiceInterface
	metrics DecryptMetricsInterface
}

// NewDecryptHandler creates a new decrypt handler. Metrics may be nil.
func NewDecryptHandler(service authz.DecryptionServiceInterface, metrics DecryptMetricsInterface) *DecryptHandler {
	return &DecryptHandler{service: service, metrics: metrics}
}

// DecryptBatch verifies the submitted grant and decrypts every handle in
// the batch. Any rejected pair fails the whole request.
func (h *DecryptHandler) DecryptBatch(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.DecryptBatchRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	grant, err := grantFromRequest(account, &req.Grant)
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails(err.Error()))
	}

	pairs := make([]authz.HandlePair, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		handle, err := models.ParseHandle(pair.Handle)
		if err != nil {
			return SendError(c, errors.DecryptUnknownHandle)
		}
		pairs = append(pairs, authz.HandlePair{Handle: handle, Contract: pair.Contract})
	}

	if h.metrics != nil {
		h.metrics.RecordBatchSize(len(pairs))
	}

	results, err := authz.RedeemBatch(h.service, grant, pairs)
	if err != nil {
		if h.metrics != nil {
			h.metrics.IncrementCounter("decrypt_batches_total", map[string]string{"status": "failed"})
		}
		if strings.Contains(err.Error(), authz.ErrGrantExpired.Error()) {
			return SendError(c, errors.GrantExpired)
		}
		return SendError(c, errors.DecryptFailed, errors.WithDetails(err.Error()))
	}
	if h.metrics != nil {
		h.metrics.IncrementCounter("decrypt_batches_total", map[string]string{"status": "success"})
	}

	resp := dto.DecryptBatchResponse{Results: make([]dto.DecryptedEntry, 0, len(results))}
	for handle, value := range results {
		resp.Results = append(resp.Results, dto.DecryptedEntry{
			Handle: handle.Hex(),
			Value:  value.Value.String(),
			IsBool: value.IsBool,
			Bool:   value.Bool,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

func grantFromRequest(account string, req *dto.GrantRequest) (*models.DecryptionGrant, error) {
	publicKey, err := hex.DecodeString(req.EphemeralPublicKey)
	if err != nil {
		return nil, err
	}
	signature, err := hex.DecodeString(req.Signature)
	if err != nil {
		return nil, err
	}

	var ephemeral [32]byte
	copy(ephemeral[:], publicKey)
	message := authz.NewAuthMessage(ephemeral, req.Contracts, req.StartTimestamp, req.DurationDays)

	return &models.DecryptionGrant{
		StoreKey:       models.GrantStoreKey(account, message.Hash()),
		AccountAddress: account,
		PublicKey:      publicKey,
		Signature:      signature,
		ContractSet:    strings.Join(message.Contracts, ","),
		StartTimestamp: req.StartTimestamp,
		DurationDays:   req.DurationDays,
	}, nil
}
