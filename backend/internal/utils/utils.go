package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/itchan-dev/threads/shared/errors"
)

type ThreadValidator struct {
	MaxLen int
}

func NewThreadValidator(maxLen int) *ThreadValidator {
	return &ThreadValidator{MaxLen: maxLen}
}

func (v *ThreadValidator) Text(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.BadRequest("Text is too short")
	}
	if utf8.RuneCountInString(text) > v.MaxLen {
		return errors.BadRequest(fmt.Sprintf("Text is too long, max %d characters", v.MaxLen))
	}
	return nil
}
