// internal/provider/flutterwave/flutterwave.go
package flutterwave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tipkesho-settlement/config"
	"tipkesho-settlement/internal/provider"
	"tipkesho-settlement/pkg/secrets"
)

type FlutterwaveProvider struct {
	config     config.FlutterwaveConfig
	secrets    secrets.Store
	httpClient *http.Client
}

func NewFlutterwaveProvider(cfg config.FlutterwaveConfig, store secrets.Store) *FlutterwaveProvider {
	return &FlutterwaveProvider{
		config:  cfg,
		secrets: store,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (f *FlutterwaveProvider) GetName() string {
	return "flutterwave"
}

// PaymentRequest is the Flutterwave payment initiation body.
type PaymentRequest struct {
	TxRef          string         `json:"tx_ref"`
	Amount         string         `json:"amount"`
	Currency       string         `json:"currency"`
	RedirectURL    string         `json:"redirect_url"`
	PaymentOptions string         `json:"payment_options"`
	Customer       Customer       `json:"customer"`
	Customizations Customizations `json:"customizations"`
	Meta           Meta           `json:"meta"`
}

type Customer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber"`
	Name        string `json:"name"`
}

type Customizations struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

type Meta struct {
	TipID       string `json:"tip_id"`
	FromUserID  string `json:"from_user_id"`
	ToCreatorID string `json:"to_creator_id"`
}

// PaymentResponse is the subset of the Flutterwave response the adapter
// inspects; the full body is carried verbatim in ChargeResult.Raw.
type PaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

// InitiateCharge submits one mobile-money charge. The bearer credential is
// read from the secret store at call time so key rotation needs no restart.
func (f *FlutterwaveProvider) InitiateCharge(ctx context.Context, req *provider.ChargeRequest) (*provider.ChargeResult, error) {
	token, err := f.secrets.GetProviderCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider credential: %w", err)
	}

	request := PaymentRequest{
		TxRef:          req.TxRef,
		Amount:         req.Amount.StringFixed(2),
		Currency:       req.Currency,
		RedirectURL:    f.config.RedirectURL,
		PaymentOptions: "mobilemoneykenya",
		Customer: Customer{
			Email:       req.CustomerEmail,
			PhoneNumber: req.CustomerPhone,
			Name:        req.CustomerName,
		},
		Customizations: Customizations{
			Title:       f.config.PageTitle,
			Description: f.config.PageDescription,
			Logo:        f.config.LogoURL,
		},
		Meta: Meta{
			TipID:       req.Meta.TipID,
			FromUserID:  req.Meta.FromUserID,
			ToCreatorID: req.Meta.ToCreatorID,
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, &provider.CallError{Err: err}
	}

	url := fmt.Sprintf("%s/payments", f.config.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, &provider.CallError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, &provider.CallError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.CallError{Err: err}
	}

	var parsed PaymentResponse
	parseErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		callErr := &provider.CallError{
			Raw: json.RawMessage(respBody),
			Err: fmt.Errorf("provider returned HTTP %d", resp.StatusCode),
		}
		if parseErr == nil && parsed.Message != "" {
			callErr.Message = parsed.Message
		}
		return nil, callErr
	}

	if parseErr != nil {
		return nil, &provider.CallError{
			Raw: json.RawMessage(respBody),
			Err: fmt.Errorf("failed to parse provider response: %w", parseErr),
		}
	}

	return &provider.ChargeResult{
		Success: parsed.Status == "success",
		Message: parsed.Message,
		Raw:     json.RawMessage(respBody),
	}, nil
}
