package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Money - сумма в минимальных единицах валюты.
type Money int64

// Percent - целое значение в диапазоне [0, 100].
type Percent int16

// NewPercent проверяет диапазон.
func NewPercent(v int) (Percent, error) {
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: percent %d is out of range [0, 100]", ErrInvalidValue, v)
	}
	return Percent(v), nil
}

func (p *Percent) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: percent must be an integer: %v", ErrInvalidValue, err)
	}
	parsed, err := NewPercent(v)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Locale - язык заказа. В JSON только в нижнем регистре.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
	LocaleZH Locale = "zh"
)

// ParseLocale принимает только точное совпадение: "EN" не считается "en".
func ParseLocale(s string) (Locale, error) {
	switch l := Locale(s); l {
	case LocaleEN, LocaleRU, LocaleZH:
		return l, nil
	default:
		return "", fmt.Errorf("%w: unknown locale %q", ErrInvalidValue, s)
	}
}

func (l *Locale) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: locale must be a string: %v", ErrInvalidValue, err)
	}
	parsed, err := ParseLocale(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Currency - валюта оплаты. В JSON только в верхнем регистре.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyRU  Currency = "RU"
)

func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(s); c {
	case CurrencyUSD, CurrencyRU:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown currency %q", ErrInvalidValue, s)
	}
}

func (c *Currency) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: currency must be a string: %v", ErrInvalidValue, err)
	}
	parsed, err := ParseCurrency(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ItemStatus - код статуса позиции. В JSON - голое целое число.
type ItemStatus int16

// ItemStatusAccepted - единственный поддерживаемый сейчас код.
const ItemStatusAccepted ItemStatus = 202

func ParseItemStatus(code int) (ItemStatus, error) {
	if ItemStatus(code) != ItemStatusAccepted {
		return 0, fmt.Errorf("%w: unknown item status %d", ErrInvalidValue, code)
	}
	return ItemStatus(code), nil
}

func (s *ItemStatus) UnmarshalJSON(b []byte) error {
	var code int
	if err := json.Unmarshal(b, &code); err != nil {
		return fmt.Errorf("%w: item status must be an integer: %v", ErrInvalidValue, err)
	}
	parsed, err := ParseItemStatus(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Phone - телефон получателя, обязательно начинается с "+".
type Phone string

func NewPhone(s string) (Phone, error) {
	if !strings.HasPrefix(s, "+") {
		return "", fmt.Errorf("%w: phone %q must start with '+'", ErrInvalidValue, s)
	}
	return Phone(s), nil
}

func (p *Phone) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: phone must be a string: %v", ErrInvalidValue, err)
	}
	parsed, err := NewPhone(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
