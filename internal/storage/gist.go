package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
)

const defaultGistAPI = "https://api.github.com"

// GistStore keeps all entries as one JSON file inside a GitHub Gist.
type GistStore struct {
	gistID      string
	githubToken string
	filename    string
	baseURL     string
	client      *http.Client
	mu          sync.Mutex
}

func NewGistStore(gistID, githubToken string) *GistStore {
	return &GistStore{
		gistID:      gistID,
		githubToken: githubToken,
		filename:    "quiz-state.json",
		baseURL:     defaultGistAPI,
		client:      http.DefaultClient,
	}
}

func (gs *GistStore) url() string {
	return fmt.Sprintf("%s/gists/%s", gs.baseURL, gs.gistID)
}

func (gs *GistStore) loadFromGist() (map[string]string, error) {
	req, err := http.NewRequest(http.MethodGet, gs.url(), nil)
	if err != nil {
		return nil, err
	}

	if gs.githubToken != "" {
		req.Header.Set("Authorization", "token "+gs.githubToken)
	}

	resp, err := gs.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var gist struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}

	if err := json.Unmarshal(body, &gist); err != nil {
		return nil, fmt.Errorf("failed to decode gist: %w", err)
	}

	entries := make(map[string]string)
	file, exists := gist.Files[gs.filename]
	if exists && file.Content != "" {
		if err := json.Unmarshal([]byte(file.Content), &entries); err != nil {
			log.Printf("Warning: gist file %s is corrupted, starting empty: %v", gs.filename, err)
			return make(map[string]string), nil
		}
	}

	return entries, nil
}

func (gs *GistStore) saveToGist(entries map[string]string) error {
	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"files": map[string]interface{}{
			gs.filename: map[string]interface{}{
				"content": string(content),
			},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPatch, gs.url(), bytes.NewReader(jsonPayload))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "token "+gs.githubToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := gs.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return nil
}

func (gs *GistStore) Get(key string) (string, bool, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	entries, err := gs.loadFromGist()
	if err != nil {
		return "", false, fmt.Errorf("error loading from gist: %w", err)
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (gs *GistStore) Set(key, value string) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	entries, err := gs.loadFromGist()
	if err != nil {
		return fmt.Errorf("error loading from gist: %w", err)
	}
	entries[key] = value

	if err := gs.saveToGist(entries); err != nil {
		return fmt.Errorf("error saving to gist: %w", err)
	}
	return nil
}

func (gs *GistStore) Delete(key string) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	entries, err := gs.loadFromGist()
	if err != nil {
		return fmt.Errorf("error loading from gist: %w", err)
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)

	if err := gs.saveToGist(entries); err != nil {
		return fmt.Errorf("error saving to gist: %w", err)
	}
	return nil
}
