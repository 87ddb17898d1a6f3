package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/sitm-outreach/internal/content"
	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type RenderContentInput struct {
	Channel  entity.Channel    `json:"channel"`
	Audience entity.Audience   `json:"audience"`
	Program  string            `json:"program"`
	Context  map[string]string `json:"context"`
}

type RenderContentOutput struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

type RenderContentUseCase struct {
	Engine *content.Engine
}

func NewRenderContentUseCase(engine *content.Engine) *RenderContentUseCase {
	return &RenderContentUseCase{Engine: engine}
}

func (uc *RenderContentUseCase) Execute(ctx context.Context, input RenderContentInput) (*RenderContentOutput, error) {
	if errs := ValidateRenderContentInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	msg, err := uc.Engine.RenderMessage(input.Channel, input.Audience, input.Program, input.Context)
	if err != nil {
		return nil, renderError(err)
	}
	return &RenderContentOutput{Subject: msg.Subject, Body: msg.Body}, nil
}

// Placeholders lists the fields a caller must supply for a template.
func (uc *RenderContentUseCase) Placeholders(ctx context.Context, input RenderContentInput) ([]string, error) {
	if errs := ValidateRenderContentInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	fields, err := uc.Engine.Placeholders(input.Channel, input.Audience, input.Program)
	if err != nil {
		return nil, renderError(err)
	}
	return fields, nil
}

func renderError(err error) error {
	out := classify(err, CodeInternal)
	de, ok := out.(*DomainError)
	if !ok {
		return out
	}
	var perr *content.PlaceholderError
	switch {
	case errors.As(err, &perr):
		de.Field = perr.Field
	case errors.Is(err, entity.ErrUnknownProgram):
		de.Field = "program"
	}
	return de
}
