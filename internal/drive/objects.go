package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

const folderMimeType = "application/vnd.google-apps.folder"

// objectFields is the projection requested on every lookup; Checksum is the
// sync fingerprint so it must always be present.
const objectFields = "files(id, name, mimeType, md5Checksum)"

type listResponse struct {
	Files []Object `json:"files"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

// FindByName looks up an object by exact name, optionally scoped to a parent
// folder. Returns nil when no such object exists.
func (c *Client) FindByName(ctx context.Context, name, parentID string, notifyExpiry bool) (*Object, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", strings.ReplaceAll(name, "'", `\'`))
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", objectFields)
	endpoint := c.baseURL + "/files?" + params.Encode()

	resp, err := c.do(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}, notifyExpiry)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	return &list.Files[0], nil
}

// CreateFolder creates a folder at the drive root and returns its id.
func (c *Client) CreateFolder(ctx context.Context, name string, notifyExpiry bool) (string, error) {
	metadata, err := json.Marshal(map[string]string{
		"name":     name,
		"mimeType": folderMimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode folder metadata: %w", err)
	}

	endpoint := c.baseURL + "/files"
	resp, err := c.do(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(metadata))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, notifyExpiry)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var created Object
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode folder response: %w", err)
	}
	return created.ID, nil
}

// EnsureFolder finds the named folder at the drive root, creating it when
// absent. Idempotent.
func (c *Client) EnsureFolder(ctx context.Context, name string, notifyExpiry bool) (string, error) {
	folder, err := c.FindByName(ctx, name, "", notifyExpiry)
	if err != nil {
		return "", err
	}
	if folder != nil {
		return folder.ID, nil
	}

	c.logger.Info("creating library folder", "name", name)
	return c.CreateFolder(ctx, name, notifyExpiry)
}

// Upload creates a new object under parentID via a multipart request carrying
// a JSON metadata part and the binary payload, returning the new object's id.
func (c *Client) Upload(ctx context.Context, data []byte, name, parentID, mimeType string, notifyExpiry bool) (string, error) {
	metadata, err := json.Marshal(map[string]any{
		"name":     name,
		"parents":  []string{parentID},
		"mimeType": mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode upload metadata: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metadata); err != nil {
		return "", fmt.Errorf("failed to write metadata part: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", mimeType)
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create media part: %w", err)
	}
	if _, err := mediaPart.Write(data); err != nil {
		return "", fmt.Errorf("failed to write media part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := c.uploadURL + "/files?uploadType=multipart&fields=id"
	payload := body.Bytes()

	resp, err := c.do(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
		return req, nil
	}, notifyExpiry)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	return uploaded.ID, nil
}

// PatchContent replaces an existing object's content in place.
func (c *Client) PatchContent(ctx context.Context, id string, data []byte, mimeType string, notifyExpiry bool) error {
	endpoint := c.uploadURL + "/files/" + id + "?uploadType=media"

	resp, err := c.do(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", mimeType)
		return req, nil
	}, notifyExpiry)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// PatchMetadata updates an existing object's metadata fields (e.g. rename).
func (c *Client) PatchMetadata(ctx context.Context, id string, fields map[string]any, notifyExpiry bool) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode metadata patch: %w", err)
	}

	endpoint := c.baseURL + "/files/" + id
	resp, err := c.do(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, notifyExpiry)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// Download fetches an object's raw content.
func (c *Client) Download(ctx context.Context, id string, notifyExpiry bool) ([]byte, error) {
	endpoint := c.baseURL + "/files/" + id + "?alt=media"

	resp, err := c.do(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}, notifyExpiry)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object content: %w", err)
	}
	return data, nil
}

// Delete permanently removes an object.
func (c *Client) Delete(ctx context.Context, id string, notifyExpiry bool) error {
	endpoint := c.baseURL + "/files/" + id

	resp, err := c.do(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}, notifyExpiry)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// RevokeToken invalidates a bearer token at the authorization server.
// Not wrapped by the refresh interceptor: revoking a dead token is pointless.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}
