package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/gateway-admin/pkg/bundle"
	"github.com/doodlesbykumbi/gateway-admin/pkg/client"
	"github.com/doodlesbykumbi/gateway-admin/pkg/preference"
	"github.com/doodlesbykumbi/gateway-admin/pkg/resolver"
	gormstore "github.com/doodlesbykumbi/gateway-admin/pkg/server/store/gorm"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	// remembered holds values captured from responses, e.g. grant ids
	remembered map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:         tc,
		remembered: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a gateway admin server is running$`, s.aServerIsRunning)
	sc.Step(`^the following bundle is loaded:$`, s.theFollowingBundleIsLoaded)
	sc.Step(`^I am "([^"]*)"$`, s.iAm)
	sc.Step(`^I am anonymous$`, s.iAmAnonymous)

	// Request steps
	sc.Step(`^I (GET|DELETE) "([^"]*)"$`, s.iSendRequest)
	sc.Step(`^I (POST|PUT) "([^"]*)" with:$`, s.iSendRequestWithBody)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response should have (\d+) items?$`, s.theResponseShouldHaveItems)
	sc.Step(`^I remember the response field "([^"]*)" as "([^"]*)"$`, s.iRememberTheResponseField)

	// Client steps
	sc.Step(`^"([^"]*)" in groups "([^"]*)" resolves (COMPUTE|STORAGE) "([^"]*)" on gateway "([^"]*)" to:$`, s.resolvesTo)

	registerJWTSteps(s, sc)
}

func (s *StepsContext) aServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) theFollowingBundleIsLoaded(doc *godog.DocString) error {
	b, err := bundle.ParseString(doc.Content)
	if err != nil {
		return err
	}
	stores := bundle.Stores{
		Preferences: gormstore.NewPreferencesStore(s.tc.DB),
		Grants:      gormstore.NewAccessGrantsStore(s.tc.DB),
		Credentials: gormstore.NewCredentialsStore(s.tc.DB, s.tc.Cipher),
		Catalog:     gormstore.NewCatalogStore(s.tc.DB),
		Groups:      gormstore.NewGroupsStore(s.tc.DB),
	}
	_, err = bundle.Apply(context.Background(), stores, b)
	return err
}

func (s *StepsContext) iAm(userID string) error {
	token, err := issueTestToken(s.tc.JWTSecret, userID, 5*time.Minute)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}

func (s *StepsContext) iAmAnonymous() error {
	s.authToken = ""
	return nil
}

// expand replaces {name} with remembered values.
func (s *StepsContext) expand(text string) string {
	for k, v := range s.remembered {
		text = strings.ReplaceAll(text, "{"+k+"}", v)
	}
	return text
}

func (s *StepsContext) iSendRequest(method, path string) error {
	return s.do(method, path, "")
}

func (s *StepsContext) iSendRequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, path, body.Content)
}

func (s *StepsContext) do(method, path, body string) error {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(s.expand(body))
	}
	req, err := http.NewRequest(method, s.tc.ServerURL()+s.expand(path), reader)
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

// field walks a dotted path such as "credentials.0.ownership".
func (s *StepsContext) field(path string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(s.responseBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %s", string(s.responseBody))
	}
	for _, part := range strings.Split(path, ".") {
		switch node := doc.(type) {
		case map[string]interface{}:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in %s", path, string(s.responseBody))
			}
			doc = v
		case []interface{}:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %s", part, string(s.responseBody))
			}
			doc = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %q at %q", path, part)
		}
	}
	return doc, nil
}

func (s *StepsContext) theResponseFieldShouldBe(path, expected string) error {
	v, err := s.field(path)
	if err != nil {
		return err
	}
	if actual := fmt.Sprint(v); actual != s.expand(expected) {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseShouldHaveItems(n int) error {
	var items []interface{}
	if err := json.Unmarshal(s.responseBody, &items); err != nil {
		return fmt.Errorf("response is not a JSON array: %s", string(s.responseBody))
	}
	if len(items) != n {
		return fmt.Errorf("expected %d items, got %d: %s", n, len(items), string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) iRememberTheResponseField(path, name string) error {
	v, err := s.field(path)
	if err != nil {
		return err
	}
	// JSON numbers decode as float64
	if f, ok := v.(float64); ok {
		s.remembered[name] = strconv.FormatInt(int64(f), 10)
		return nil
	}
	s.remembered[name] = fmt.Sprint(v)
	return nil
}

func (s *StepsContext) resolvesTo(userID, groups, resourceType, resourceID, gatewayID string, table *godog.Table) error {
	rt, err := preference.ParseResourceType(resourceType)
	if err != nil {
		return err
	}
	c, err := client.New(s.tc.ServerURL(), client.WithToken(s.authToken))
	if err != nil {
		return err
	}

	var groupIDs []string
	if groups != "" {
		groupIDs = strings.Split(groups, ",")
	}
	got, err := c.Resolve(context.Background(), resolver.Query{
		ResourceType: rt,
		ResourceID:   resourceID,
		GatewayID:    gatewayID,
		UserID:       userID,
		GroupIDs:     groupIDs,
	})
	if err != nil {
		return err
	}

	want := map[string]string{}
	for _, row := range table.Rows[1:] {
		want[row.Cells[0].Value] = row.Cells[1].Value
	}
	if len(got) != len(want) {
		return fmt.Errorf("expected %v, got %v", want, got)
	}
	for k, v := range want {
		if got[k] != v {
			return fmt.Errorf("expected %s=%q, got %q (all: %v)", k, v, got[k], got)
		}
	}
	return nil
}
