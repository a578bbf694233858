package domain

import (
	"context"
	"errors"
)

type TranslateRequest struct {
	Text string `json:"text"`
}

type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type Service interface {
	Translate(context.Context, TranslateRequest) (TranslateResponse, error)
	List(context.Context) ([]Translation, error)
}

var (
	ErrInvalidText      = errors.New("invalid_text")
	ErrEmptyTranslation = errors.New("empty translation returned")
)
