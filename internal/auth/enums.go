package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"firebasebindings/internal/binding"
)

// OperationType is the kind of operation that produced a UserCredential.
type OperationType int

const (
	OperationTypeLink OperationType = iota
	OperationTypeReauthenticate
	OperationTypeSignIn
)

var operationTypes = binding.NewEnum("operation type",
	binding.Member(OperationTypeLink, "Link"),
	binding.Member(OperationTypeReauthenticate, "Reauthenticate"),
	binding.Member(OperationTypeSignIn, "SignIn"),
)

// ParseOperationType maps a wire value such as "signIn" or "sign_in".
func ParseOperationType(wire string) (OperationType, error) {
	return operationTypes.FromSnake(wire)
}

// String returns the wire value: "link", "reauthenticate" or "signIn".
func (t OperationType) String() string {
	name := operationTypes.Name(t)
	if name == "" {
		return fmt.Sprintf("OperationType(%d)", int(t))
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

func (t OperationType) MarshalText() ([]byte, error) {
	if operationTypes.Name(t) == "" {
		return nil, fmt.Errorf("%w: operation type %d", binding.ErrUnknownEnumValue, int(t))
	}
	return []byte(t.String()), nil
}

func (t *OperationType) UnmarshalText(text []byte) error {
	v, err := ParseOperationType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PersistenceType is where a client keeps its signed-in state.
type PersistenceType int

const (
	PersistenceNone PersistenceType = iota
	PersistenceLocal
	PersistenceSession
)

var persistenceTypes = binding.NewEnum("persistence type",
	binding.Member(PersistenceNone, "None"),
	binding.Member(PersistenceLocal, "Local"),
	binding.Member(PersistenceSession, "Session"),
)

// ParsePersistenceType maps a wire value; case is ignored, so "SESSION" and
// "session" both work.
func ParsePersistenceType(wire string) (PersistenceType, error) {
	return persistenceTypes.FromSnake(strings.ToLower(wire))
}

// String returns the upper-case wire value, e.g. "SESSION".
func (p PersistenceType) String() string {
	name := persistenceTypes.Name(p)
	if name == "" {
		return fmt.Sprintf("PersistenceType(%d)", int(p))
	}
	return strings.ToUpper(name)
}

func (p PersistenceType) MarshalText() ([]byte, error) {
	if persistenceTypes.Name(p) == "" {
		return nil, fmt.Errorf("%w: persistence type %d", binding.ErrUnknownEnumValue, int(p))
	}
	return []byte(p.String()), nil
}

func (p *PersistenceType) UnmarshalText(text []byte) error {
	v, err := ParsePersistenceType(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
