package audit

import (
	"fmt"
	"strconv"
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

func withError(msg, errorMessage string) string {
	if errorMessage != "" {
		return msg + ": " + errorMessage
	}
	return msg
}

// AuthenticateEvent represents a bearer token check on an API request
type AuthenticateEvent struct {
	UserID       string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	user := e.UserID
	if user == "" {
		user = "anonymous"
	}
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated", user)
	}
	return withError(fmt.Sprintf("%s failed to authenticate", user), e.ErrorMessage)
}

func (e AuthenticateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuth
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"authenticator": "jwt",
			"user":          e.UserID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result(e.Success),
		},
	}
}

// PreferenceEvent records a preference write or delete. Operation is one of
// "set", "delete" or "delete-all"; Key is empty for "delete-all".
type PreferenceEvent struct {
	UserID       string
	ClientIP     string
	ResourceType string
	ResourceID   string
	Level        string
	OwnerID      string
	Key          string
	Enforced     bool
	Operation    string
	Success      bool
	ErrorMessage string
}

func (e PreferenceEvent) MessageID() string {
	return "preference"
}

func (e PreferenceEvent) target() string {
	t := fmt.Sprintf("%s preferences of %s %s for %s", e.Level, e.ResourceType, e.ResourceID, e.OwnerID)
	if e.Key != "" {
		t = fmt.Sprintf("%s %s", e.Key, t)
	}
	return t
}

func (e PreferenceEvent) Message() string {
	if e.Success {
		msg := fmt.Sprintf("%s %s %s", e.UserID, pastTense(e.Operation), e.target())
		if e.Enforced {
			msg += " (enforced)"
		}
		return msg
	}
	return withError(fmt.Sprintf("%s tried to %s %s", e.UserID, e.Operation, e.target()), e.ErrorMessage)
}

func (e PreferenceEvent) Severity() Severity {
	return severity(e.Success)
}

func (e PreferenceEvent) Facility() int {
	return FacilityUser
}

func (e PreferenceEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"resource_type": e.ResourceType,
			"resource":      e.ResourceID,
			"level":         e.Level,
			"owner":         e.OwnerID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.Key != "" {
		sd[SDIDSubject]["key"] = e.Key
	}
	if e.Operation == "set" {
		sd[SDIDSubject]["enforced"] = strconv.FormatBool(e.Enforced)
	}
	return sd
}

// GrantEvent records an access grant create, update or delete
type GrantEvent struct {
	UserID          string
	ClientIP        string
	GrantID         int64
	ResourceType    string
	ResourceID      string
	OwnerType       string
	OwnerID         string
	CredentialToken string
	Operation       string
	Success         bool
	ErrorMessage    string
}

func (e GrantEvent) MessageID() string {
	return "access-grant"
}

func (e GrantEvent) target() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("access grant %d", e.GrantID)
	}
	return fmt.Sprintf("access grant on %s %s for %s %s", e.ResourceType, e.ResourceID, e.OwnerType, e.OwnerID)
}

func (e GrantEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s %s %s", e.UserID, pastTense(e.Operation), e.target())
	}
	return withError(fmt.Sprintf("%s tried to %s %s", e.UserID, e.Operation, e.target()), e.ErrorMessage)
}

func (e GrantEvent) Severity() Severity {
	return severity(e.Success)
}

func (e GrantEvent) Facility() int {
	return FacilityAuthPriv
}

func (e GrantEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.GrantID != 0 {
		sd[SDIDSubject]["grant"] = strconv.FormatInt(e.GrantID, 10)
	}
	if e.ResourceID != "" {
		sd[SDIDSubject]["resource_type"] = e.ResourceType
		sd[SDIDSubject]["resource"] = e.ResourceID
		sd[SDIDSubject]["owner_type"] = e.OwnerType
		sd[SDIDSubject]["owner"] = e.OwnerID
	}
	if e.CredentialToken != "" {
		sd[SDIDSubject]["credential"] = e.CredentialToken
	}
	return sd
}

// CredentialEvent records a credential create or delete. Secrets never
// appear in audit records.
type CredentialEvent struct {
	UserID       string
	ClientIP     string
	Token        string
	Name         string
	Operation    string
	Success      bool
	ErrorMessage string
}

func (e CredentialEvent) MessageID() string {
	return "credential"
}

func (e CredentialEvent) Message() string {
	target := "credential " + e.Token
	if e.Name != "" {
		target = fmt.Sprintf("credential %s (%s)", e.Token, e.Name)
	}
	if e.Success {
		return fmt.Sprintf("%s %s %s", e.UserID, pastTense(e.Operation), target)
	}
	return withError(fmt.Sprintf("%s tried to %s %s", e.UserID, e.Operation, target), e.ErrorMessage)
}

func (e CredentialEvent) Severity() Severity {
	return severity(e.Success)
}

func (e CredentialEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CredentialEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"credential": e.Token,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
}

// BundleEvent records a bundle applied from the CLI
type BundleEvent struct {
	UserID       string
	Path         string
	Gateway      string
	Preferences  int
	Grants       int
	Success      bool
	ErrorMessage string
}

func (e BundleEvent) MessageID() string {
	return "bundle"
}

func (e BundleEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s loaded bundle %s into gateway %s (%d preferences, %d grants)",
			e.UserID, e.Path, e.Gateway, e.Preferences, e.Grants)
	}
	return withError(fmt.Sprintf("%s tried to load bundle %s", e.UserID, e.Path), e.ErrorMessage)
}

func (e BundleEvent) Severity() Severity {
	return severity(e.Success)
}

func (e BundleEvent) Facility() int {
	return FacilityUser
}

func (e BundleEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"bundle":  e.Path,
			"gateway": e.Gateway,
		},
		SDIDAction: {
			"operation": "load",
			"result":    result(e.Success),
		},
	}
}

func pastTense(operation string) string {
	switch operation {
	case "set":
		return "set"
	case "delete", "delete-all":
		return "deleted"
	case "create":
		return "created"
	case "update":
		return "updated"
	default:
		return operation + "ed"
	}
}
