package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Identity is the authenticated principal as returned by the backend. Only
// Role is interpreted by the dashboard; every field besides the three named
// ones is kept in Extra and written back untouched.
type Identity struct {
	Username   string `json:"username" validate:"required"`
	Role       Role   `json:"role" validate:"role"`
	MerchantID string `json:"merchantId,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var identityValidator = newIdentityValidator()

func newIdentityValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		r, ok := fl.Field().Interface().(Role)
		return ok && r.Valid()
	})
	return v
}

// Validate enforces the identity invariant: non-empty username and a known role.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidIdentity)
	}
	if err := identityValidator.Struct(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return nil
}

// Clone returns a deep copy; callers outside the auth service only ever see clones.
func (id Identity) Clone() Identity {
	out := id
	if id.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(id.Extra))
		for k, v := range id.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

const (
	fieldUsername   = "username"
	fieldRole       = "role"
	fieldMerchantID = "merchantid"
)

func (id Identity) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(id.Extra)+3)
	for k, v := range id.Extra {
		m[k] = v
	}
	m["username"] = id.Username
	role, err := id.Role.MarshalText()
	if err != nil {
		return nil, err
	}
	m["role"] = string(role)
	if id.MerchantID != "" {
		m["merchantId"] = id.MerchantID
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts the backend's key casing (Username, Role, MerchantId)
// as well as the lower camel case written by MarshalJSON.
func (id *Identity) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if raw == nil {
		return fmt.Errorf("%w: null record", ErrInvalidIdentity)
	}

	out := Identity{}
	for key, val := range raw {
		switch strings.ToLower(key) {
		case fieldUsername:
			if err := json.Unmarshal(val, &out.Username); err != nil {
				return fmt.Errorf("%w: username: %v", ErrInvalidIdentity, err)
			}
		case fieldRole:
			var tag string
			if err := json.Unmarshal(val, &tag); err != nil {
				return fmt.Errorf("%w: role: %v", ErrInvalidIdentity, err)
			}
			r, err := ParseRole(tag)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
			}
			out.Role = r
		case fieldMerchantID:
			mid, err := DecodeLooseString(val)
			if err != nil {
				return fmt.Errorf("%w: merchantId: %v", ErrInvalidIdentity, err)
			}
			out.MerchantID = mid
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = val
		}
	}
	*id = out
	return nil
}

// DecodeLooseString reads an id-like value: a JSON string, number or null.
func DecodeLooseString(val json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(val)
	if bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// DecodeIdentity parses and validates a serialized identity in one step.
func DecodeIdentity(data []byte) (*Identity, error) {
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		if errors.Is(err, ErrInvalidIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &id, nil
}
