package domain

import (
	"fmt"
	"strings"
	"time"
)

// Config document keys.
const (
	keyETFs          = "etfs"
	keyName          = "name"
	keyISIN          = "isin"
	keyTransactions  = "transactions"
	keyAmount        = "amount"
	keyPurchasePrice = "purchase_price"
	keyPurchaseDate  = "purchase_date"
)

// DateLayout is the layout used for purchase dates the service generates itself.
const DateLayout = "2006-01-02"

// Transaction is one purchase lot. Values are never modified after creation.
type Transaction struct {
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date"`
}

// NewTransaction validates amount and price and returns the lot.
func NewTransaction(amount, price float64, date string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: amount must be > 0, got %v", ErrInvalidCommand, amount)
	}
	if price < 0 {
		return Transaction{}, fmt.Errorf("%w: price must be >= 0, got %v", ErrInvalidCommand, price)
	}
	return Transaction{Amount: amount, PurchasePrice: price, PurchaseDate: strings.TrimSpace(date)}, nil
}

// TransactionFromConfig parses a lot from its config mapping. path is used in errors.
func TransactionFromConfig(path string, data map[string]any) (Transaction, error) {
	amount, err := numberField(path, data, keyAmount)
	if err != nil {
		return Transaction{}, err
	}
	if amount <= 0 {
		return Transaction{}, &ParseError{Path: path + "." + keyAmount, Reason: "must be > 0"}
	}

	price, err := numberField(path, data, keyPurchasePrice)
	if err != nil {
		return Transaction{}, err
	}
	if price < 0 {
		return Transaction{}, &ParseError{Path: path + "." + keyPurchasePrice, Reason: "must be >= 0"}
	}

	date, err := dateField(path, data, keyPurchaseDate)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{Amount: amount, PurchasePrice: price, PurchaseDate: date}, nil
}

func numberField(path string, data map[string]any, key string) (float64, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return 0, &ParseError{Path: path + "." + key, Reason: "missing"}
	}
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	default:
		return 0, &ParseError{Path: path + "." + key, Reason: fmt.Sprintf("expected number, got %T", raw)}
	}
}

func stringField(path string, data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", &ParseError{Path: path + "." + key, Reason: "missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ParseError{Path: path + "." + key, Reason: fmt.Sprintf("expected string, got %T", raw)}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ParseError{Path: path + "." + key, Reason: "empty"}
	}
	return s, nil
}

// dateField accepts free-form strings; YAML timestamps arrive as time.Time.
func dateField(path string, data map[string]any, key string) (string, error) {
	if t, ok := data[key].(time.Time); ok {
		return t.Format(DateLayout), nil
	}
	return stringField(path, data, key)
}
