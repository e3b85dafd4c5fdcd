// Package googleauth builds authorized HTTP clients for the Google APIs
// from a credentials file and a cached token file.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Client returns an HTTP client authorized for the given scopes. The
// token must already exist at tokenFile; run Authorize first when it
// does not.
func Client(ctx context.Context, credentialsFile, tokenFile string, scopes ...string) (*http.Client, error) {
	config, err := loadConfig(credentialsFile, scopes...)
	if err != nil {
		return nil, err
	}
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("no cached token at %s (run authorization first): %w", tokenFile, err)
	}
	return config.Client(ctx, token), nil
}

// Authorize runs the console OAuth flow: it prints the consent URL,
// exchanges the pasted code and caches the token.
func Authorize(ctx context.Context, credentialsFile, tokenFile string, scopes ...string) error {
	config, err := loadConfig(credentialsFile, scopes...)
	if err != nil {
		return err
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Ouvrez ce lien dans votre navigateur puis collez le code d'autorisation :\n%v\n> ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	token, err := config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	return saveToken(tokenFile, token)
}

func loadConfig(credentialsFile string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	config, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return config, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
