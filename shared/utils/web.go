package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/itchan-dev/threads/shared/errors"
	"github.com/itchan-dev/threads/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request body is not valid json", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func ParseUUID(param, paramName string) (uuid.UUID, error) {
	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, errors.BadRequest("invalid " + paramName + ": must be a uuid")
	}
	return id, nil
}

// ParsePositiveInt returns def for an empty param and a 400 for anything that is not a positive integer
func ParsePositiveInt(param, paramName string, def int) (int, error) {
	if param == "" {
		return def, nil
	}
	val, err := strconv.Atoi(param)
	if err != nil || val < 1 {
		return 0, errors.BadRequest("invalid " + paramName + ": must be a positive integer")
	}
	return val, nil
}
