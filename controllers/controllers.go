// Package controllers adapts HTTP requests to the service layer and renders
// every outcome as a {success, ...} JSON body.
package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"forever-ecommerce/middleware"
	"forever-ecommerce/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst, rejecting malformed or oversized input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return utils.NewAPIError(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		if errors.Is(err, io.EOF) {
			return utils.BadRequest("Request body is required")
		}
		return utils.BadRequest("Invalid input")
	}
	return nil
}

// currentUser returns the authenticated customer's id.
func currentUser(r *http.Request) (primitive.ObjectID, error) {
	id, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		return primitive.NilObjectID, utils.Unauthorized("not authorized")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil {
		return fallback
	}
	return n
}

// flexBool accepts both JSON booleans and the strings "true"/"false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}
