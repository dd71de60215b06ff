// Package convert maps domain results to and from authv1 wire messages.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/and161185/bliss-auth/internal/api/authv1"
	"github.com/and161185/bliss-auth/internal/errs"
	"github.com/and161185/bliss-auth/internal/model"
	"github.com/and161185/bliss-auth/internal/service"
)

// Outcome codes shared with existing clients of the service.
const (
	CodeAlreadyPermanent  = "101"
	CodeAlreadyTransient  = "102"
	CodeNotFound          = "201"
	CodeTokenExpired      = "301"
	CodeTokenMalformed    = "302"
	CodeTokenNotYetValid  = "303"
	CodeTokenWrongClass   = "304"
	CodeMissingEmail      = "401"
	CodeProfileIncomplete = "402"
	CodeUnauthenticated   = "403"
	CodeInvalidInput      = "404"
)

// DateLayout is the wire format of dates of birth.
const DateLayout = "2006-01-02"

var outcomeCodes = map[model.Outcome]struct{ code, msg string }{
	model.OutcomeAlreadyPermanent:  {CodeAlreadyPermanent, "Already Permanent"},
	model.OutcomeAlreadyTransient:  {CodeAlreadyTransient, "Already Transient"},
	model.OutcomeNotFound:          {CodeNotFound, "No Transient Account Found"},
	model.OutcomeMissingEmail:      {CodeMissingEmail, "Email Required"},
	model.OutcomeProfileIncomplete: {CodeProfileIncomplete, "Profile Incomplete"},
	model.OutcomeUnauthenticated:   {CodeUnauthenticated, "Unauthenticated"},
	model.OutcomeInvalidInput:      {CodeInvalidInput, "Invalid Input"},
}

var faultCodes = map[model.TokenFault]struct{ code, msg string }{
	model.FaultExpired:     {CodeTokenExpired, "Token Expired"},
	model.FaultMalformed:   {CodeTokenMalformed, "Token Malformed"},
	model.FaultNotYetValid: {CodeTokenNotYetValid, "Token Not Active"},
	model.FaultWrongClass:  {CodeTokenWrongClass, "Wrong Token Type"},
}

// ToResponse renders any lifecycle result as an AuthResponse.
func ToResponse(r model.Result) *authv1.AuthResponse {
	switch r.Outcome {
	case model.OutcomeIssued:
		out := &authv1.AuthResponse{Status: authv1.StatusSuccess, Email: r.Email, Name: r.Name, PhotoURL: r.PhotoURL}
		if is := r.Issuance; is != nil {
			out.Token = is.Token
			out.TokenType = string(is.Class)
			out.ExpiresAt = is.ExpiresAt.Unix()
			out.RevokeTime = is.RevokeTime.UnixMilli()
		}
		return out
	case model.OutcomeProfileCreated:
		out := &authv1.AuthResponse{Status: authv1.StatusSuccess, Message: "Profile Created"}
		if r.Profile != nil {
			out.ImageLink = r.Profile.ImageLink
		}
		return out
	case model.OutcomeInvalidToken:
		c, ok := faultCodes[r.Fault]
		if !ok {
			c = faultCodes[model.FaultMalformed]
		}
		return &authv1.AuthResponse{Status: authv1.StatusFailed, Code: c.code, Message: c.msg}
	}
	c, ok := outcomeCodes[r.Outcome]
	if !ok {
		return &authv1.AuthResponse{Status: authv1.StatusFailed, Message: string(r.Outcome)}
	}
	return &authv1.AuthResponse{Status: authv1.StatusFailed, Code: c.code, Message: c.msg}
}

// FromProfileRequest parses a profile completion request.
func FromProfileRequest(in *authv1.CompleteProfileRequest) (service.ProfileInput, error) {
	if in == nil {
		return service.ProfileInput{}, fmt.Errorf("%w: nil profile", errs.ErrInvalidInput)
	}
	var dob time.Time
	if s := strings.TrimSpace(in.DateOfBirth); s != "" {
		d, err := time.Parse(DateLayout, s)
		if err != nil {
			return service.ProfileInput{}, fmt.Errorf("%w: client_dob: %v", errs.ErrInvalidInput, err)
		}
		dob = d
	}
	return service.ProfileInput{
		Category:      strings.TrimSpace(in.Category),
		DateOfBirth:   dob,
		ContactNumber: in.ContactNumber,
		OriginCountry: strings.TrimSpace(in.OriginCountry),
		Bio:           in.Bio,
	}, nil
}
