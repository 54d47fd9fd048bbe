package auth

import (
	"time"

	fbauth "firebase.google.com/go/v4/auth"
)

// ProviderIDPassword identifies email and password accounts.
const ProviderIDPassword = "password"

// UserInfo is the profile a user has with one identity provider.
type UserInfo struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	ProviderID  string `json:"providerId"`
}

// UserMetadata holds account timestamps. A zero time means never.
type UserMetadata struct {
	CreationTime   time.Time `json:"creationTime"`
	LastSignInTime time.Time `json:"lastSignInTime"`
}

// User is a Firebase user account.
type User struct {
	UserInfo
	EmailVerified bool           `json:"emailVerified"`
	IsAnonymous   bool           `json:"isAnonymous"`
	Disabled      bool           `json:"disabled"`
	Metadata      UserMetadata   `json:"metadata"`
	ProviderData  []UserInfo     `json:"providerData"`
	CustomClaims  map[string]any `json:"customClaims,omitempty"`
	TenantID      string         `json:"tenantId,omitempty"`
}

// UserCredential is the outcome of an operation that signs a user in.
type UserCredential struct {
	OperationType OperationType `json:"operationType"`
	ProviderID    string        `json:"providerId,omitempty"`
	User          *User         `json:"user"`
}

func newUserInfo(info *fbauth.UserInfo) UserInfo {
	if info == nil {
		return UserInfo{}
	}
	return UserInfo{
		UID:         info.UID,
		DisplayName: info.DisplayName,
		Email:       info.Email,
		PhoneNumber: info.PhoneNumber,
		PhotoURL:    info.PhotoURL,
		ProviderID:  info.ProviderID,
	}
}

func newUser(rec *fbauth.UserRecord) *User {
	u := &User{
		UserInfo:      newUserInfo(rec.UserInfo),
		EmailVerified: rec.EmailVerified,
		IsAnonymous:   len(rec.ProviderUserInfo) == 0,
		Disabled:      rec.Disabled,
		CustomClaims:  rec.CustomClaims,
		TenantID:      rec.TenantID,
		ProviderData:  make([]UserInfo, 0, len(rec.ProviderUserInfo)),
	}
	for _, p := range rec.ProviderUserInfo {
		u.ProviderData = append(u.ProviderData, newUserInfo(p))
	}
	if rec.UserMetadata != nil {
		u.Metadata = UserMetadata{
			CreationTime:   fromMillis(rec.UserMetadata.CreationTimestamp),
			LastSignInTime: fromMillis(rec.UserMetadata.LastLogInTimestamp),
		}
	}
	return u
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
