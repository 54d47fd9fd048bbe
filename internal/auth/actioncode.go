package auth

import (
	"firebasebindings/internal/binding"

	fbauth "firebase.google.com/go/v4/auth"
)

// ActionCodeSettings controls the links sent for email sign-in, verification
// and password reset.
type ActionCodeSettings struct {
	URL               string
	HandleCodeInApp   bool
	Android           *AndroidSettings
	IOS               *IOSSettings
	DynamicLinkDomain string
}

// AndroidSettings opens action links in an Android app.
type AndroidSettings struct {
	PackageName    string
	InstallApp     *bool
	MinimumVersion string
}

// IOSSettings opens action links in an iOS app.
type IOSSettings struct {
	BundleID string
}

// Validate checks the fields Firebase rejects.
func (s *ActionCodeSettings) Validate() error {
	if s.URL == "" {
		return NewAuthError(CodeMissingContinueURI, "action code settings need a continue URL")
	}
	if s.Android != nil && s.Android.PackageName == "" {
		return NewAuthError(CodeMissingAndroidPackageName, "android settings need a package name")
	}
	if s.IOS != nil && s.IOS.BundleID == "" {
		return NewAuthError(CodeMissingIOSBundleID, "ios settings need a bundle id")
	}
	return nil
}

// ToJSON returns the wire form, leaving out unset optional values.
func (s *ActionCodeSettings) ToJSON() map[string]any {
	var android, ios map[string]any
	if s.Android != nil {
		android = binding.JSONWithoutNulls(
			binding.F("installApp", binding.Deref(s.Android.InstallApp)),
			binding.F("minimumVersion", binding.Optional(s.Android.MinimumVersion)),
			binding.F("packageName", s.Android.PackageName),
		)
	}
	if s.IOS != nil {
		ios = binding.JSONWithoutNulls(binding.F("bundleId", s.IOS.BundleID))
	}
	return binding.JSONWithoutNulls(
		binding.F("url", s.URL),
		binding.F("handleCodeInApp", s.HandleCodeInApp),
		binding.F("android", android),
		binding.F("iOS", ios),
		binding.F("dynamicLinkDomain", binding.Optional(s.DynamicLinkDomain)),
	)
}

// admin converts to the Admin SDK settings. A nil receiver yields nil.
func (s *ActionCodeSettings) admin() (*fbauth.ActionCodeSettings, error) {
	if s == nil {
		return nil, nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := &fbauth.ActionCodeSettings{
		URL:               s.URL,
		HandleCodeInApp:   s.HandleCodeInApp,
		DynamicLinkDomain: s.DynamicLinkDomain,
	}
	if s.Android != nil {
		out.AndroidPackageName = s.Android.PackageName
		out.AndroidMinimumVersion = s.Android.MinimumVersion
		if s.Android.InstallApp != nil {
			out.AndroidInstallApp = *s.Android.InstallApp
		}
	}
	if s.IOS != nil {
		out.IOSBundleID = s.IOS.BundleID
	}
	return out, nil
}
