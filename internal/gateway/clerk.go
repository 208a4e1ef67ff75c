package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

const defaultProviderTimeout = 10 * time.Second

// ClerkProvider implements Provider against Clerk: session tokens are
// verified locally via the SDK's JWT verification, user records are fetched
// through the backend API, and the password flows go through the frontend
// API over plain HTTP.
type ClerkProvider struct {
	frontendAPI string
	httpClient  *http.Client
	profiles    *profileCache
}

// NewClerkProvider creates a provider client. frontendAPI is the instance's
// frontend API origin, e.g. https://clerk.example.com. The backend SDK key
// must already be configured via clerk.SetKey.
func NewClerkProvider(frontendAPI string) *ClerkProvider {
	return &ClerkProvider{
		frontendAPI: strings.TrimSuffix(frontendAPI, "/"),
		httpClient: &http.Client{
			Timeout: defaultProviderTimeout,
		},
		profiles: newProfileCache(5 * time.Minute),
	}
}

type clientSessionResponse struct {
	Response struct {
		CreatedSessionID string `json:"created_session_id"`
	} `json:"response"`
	Client struct {
		Sessions []struct {
			ID              string `json:"id"`
			LastActiveToken struct {
				JWT string `json:"jwt"`
			} `json:"last_active_token"`
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"sessions"`
	} `json:"client"`
	Errors []struct {
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
	} `json:"errors"`
}

func (p *ClerkProvider) SignIn(ctx context.Context, creds Credentials) (*ProviderSession, error) {
	form := url.Values{}
	form.Set("identifier", creds.Email)
	form.Set("password", creds.Password)
	form.Set("strategy", "password")

	resp, err := p.postForm(ctx, "/v1/client/sign_ins", form)
	if err != nil {
		return nil, err
	}
	return p.sessionFromClientResponse(ctx, resp)
}

func (p *ClerkProvider) SignUp(ctx context.Context, reg Registration) (*ProviderSession, error) {
	form := url.Values{}
	form.Set("email_address", reg.Email)
	form.Set("password", reg.Password)
	if reg.Name != "" {
		form.Set("first_name", reg.Name)
	}
	if reg.Company != "" || reg.Phone != "" {
		meta, _ := json.Marshal(map[string]string{"company": reg.Company, "phone": reg.Phone})
		form.Set("unsafe_metadata", string(meta))
	}

	resp, err := p.postForm(ctx, "/v1/client/sign_ups", form)
	if err != nil {
		return nil, err
	}
	return p.sessionFromClientResponse(ctx, resp)
}

func (p *ClerkProvider) SignOut(ctx context.Context, token string) error {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}

	p.profiles.Delete(claims.Subject)

	form := url.Values{}
	_, err = p.postForm(ctx, "/v1/client/sessions/"+claims.SessionID+"/remove", form)
	return err
}

func (p *ClerkProvider) CurrentSession(ctx context.Context, token string) (*ProviderSession, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return nil, fmt.Errorf("session verification failed: %w", err)
	}

	profile, err := p.fetchProfile(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return &ProviderSession{Token: token, Profile: profile}, nil
}

func (p *ClerkProvider) Refresh(ctx context.Context, token string) (*ProviderSession, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return nil, fmt.Errorf("session verification failed: %w", err)
	}

	resp, err := p.postForm(ctx, "/v1/client/sessions/"+claims.SessionID+"/touch", url.Values{})
	if err != nil {
		return nil, err
	}
	return p.sessionFromClientResponse(ctx, resp)
}

func (p *ClerkProvider) RequestPasswordReset(ctx context.Context, email string) error {
	form := url.Values{}
	form.Set("identifier", email)
	form.Set("strategy", "reset_password_email_code")

	_, err := p.postForm(ctx, "/v1/client/sign_ins", form)
	return err
}

func (p *ClerkProvider) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	form := url.Values{}
	form.Set("code", resetToken)
	form.Set("password", newPassword)
	form.Set("strategy", "reset_password_email_code")

	_, err := p.postForm(ctx, "/v1/client/sign_ins/attempt_first_factor", form)
	return err
}

// fetchProfile loads the full user record through the backend API, with a
// short-lived cache in front.
func (p *ClerkProvider) fetchProfile(ctx context.Context, userID string) (*session.Profile, error) {
	if cached := p.profiles.Get(userID); cached != nil {
		return cached, nil
	}

	usr, err := user.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	profile := profileFromClerkUser(usr)
	p.profiles.Set(userID, profile)
	return profile, nil
}

func (p *ClerkProvider) sessionFromClientResponse(ctx context.Context, resp *clientSessionResponse) (*ProviderSession, error) {
	sessionID := resp.Response.CreatedSessionID
	for _, s := range resp.Client.Sessions {
		if sessionID == "" || s.ID == sessionID {
			if s.LastActiveToken.JWT == "" {
				continue
			}
			profile, err := p.fetchProfile(ctx, s.User.ID)
			if err != nil {
				return nil, err
			}
			return &ProviderSession{Token: s.LastActiveToken.JWT, Profile: profile}, nil
		}
	}
	return nil, fmt.Errorf("provider returned no usable session")
}

func (p *ClerkProvider) postForm(ctx context.Context, path string, form url.Values) (*clientSessionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.frontendAPI+path, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	var parsed clientSessionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if len(parsed.Errors) > 0 {
			return nil, fmt.Errorf("provider error: %s", parsed.Errors[0].Message)
		}
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return &parsed, nil
}

func profileFromClerkUser(usr *clerk.User) *session.Profile {
	profile := &session.Profile{
		ID:       usr.ID,
		Name:     buildFullName(usr),
		Metadata: map[string]string{},
	}

	// Prefer the primary email, fall back to the first one.
	if len(usr.EmailAddresses) > 0 {
		profile.Email = usr.EmailAddresses[0].EmailAddress
		primaryID := stringValue(usr.PrimaryEmailAddressID)
		for _, email := range usr.EmailAddresses {
			if email.ID == primaryID {
				profile.Email = email.EmailAddress
				break
			}
		}
	}

	if usr.UnsafeMetadata != nil {
		var meta map[string]string
		if err := json.Unmarshal(usr.UnsafeMetadata, &meta); err == nil {
			profile.Company = meta["company"]
			profile.Phone = meta["phone"]
			for k, v := range meta {
				profile.Metadata[k] = v
			}
		}
	}

	return profile
}

func buildFullName(usr *clerk.User) string {
	firstName := stringValue(usr.FirstName)
	lastName := stringValue(usr.LastName)

	switch {
	case firstName != "" && lastName != "":
		return firstName + " " + lastName
	case firstName != "":
		return firstName
	case lastName != "":
		return lastName
	case stringValue(usr.Username) != "":
		return stringValue(usr.Username)
	}
	return "User"
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
