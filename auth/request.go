package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/rideon-session/internal/errors"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/pkg/errors"
)

// Request builds a request for method and rawURL and sends it through Do.
// A rawURL starting with "/" is resolved against the base URL.
func (m *Manager) Request(ctx context.Context, method, rawURL string, body io.Reader, header http.Header) (*http.Response, error) {
	if len(rawURL) > 0 && rawURL[0] == '/' {
		rawURL = m.URL(rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	return m.Do(ctx, req)
}

// Do sends req with the stored bearer token, the JSON content type and the
// CSRF header. Headers already present on req win. A 401 response triggers one
// refresh: on success the request is replayed once with the new access token
// and that response is returned whatever its status; on failure the session is
// logged out and the original 401 response is returned. If ctx ends while the
// refresh is running, ctx.Err() is returned and the session is left alone.
//
// Do returns ErrNoToken without touching the network when no access token is
// stored. Network failures are returned wrapped in ErrTransport and are not
// retried.
func (m *Manager) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	accessToken, ok, err := m.repo.Get(ctx, session.FieldAccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "read access token")
	}
	if !ok || accessToken == "" {
		return nil, apperrors.ErrNoToken
	}

	req = req.Clone(ctx)
	if err := bufferBody(req); err != nil {
		return nil, err
	}
	setDefaultHeader(req.Header, "Authorization", "Bearer "+accessToken)
	setDefaultHeader(req.Header, "Content-Type", "application/json")
	setDefaultHeader(req.Header, HeaderCSRFToken, m.CSRFToken())
	setDefaultHeader(req.Header, HeaderCorrelationID, uuid.NewString())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, apperrors.Transport(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		m.metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(start).Seconds())
		return resp, nil
	}

	if err := preserveBody(resp); err != nil {
		return nil, apperrors.Transport(err)
	}

	m.logger.Debug().Str("url", req.URL.Redacted()).Msg("unauthorized response, refreshing access token")
	refreshed, err := m.sharedRefresh(ctx)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	if !refreshed {
		m.logger.Warn().Str("url", req.URL.Redacted()).Msg("token refresh failed after 401, logging out")
		m.Logout(ctx)
		m.metrics.ObserveRequest(req.Method, resp.StatusCode, time.Since(start).Seconds())
		return resp, nil
	}

	retry, err := m.replay(ctx, req)
	if err != nil {
		return nil, err
	}
	m.metrics.ObserveRetry()

	retryResp, err := m.client.Do(retry)
	if err != nil {
		return nil, apperrors.Transport(err)
	}
	m.metrics.ObserveRequest(req.Method, retryResp.StatusCode, time.Since(start).Seconds())
	return retryResp, nil
}

// replay clones req with a fresh body and the access token now in the store.
func (m *Manager) replay(ctx context.Context, req *http.Request) (*http.Request, error) {
	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "replay request body")
		}
		retry.Body = body
	}
	accessToken, _, err := m.repo.Get(ctx, session.FieldAccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "read access token")
	}
	retry.Header.Set("Authorization", "Bearer "+accessToken)
	return retry, nil
}

// bufferBody makes req's body replayable.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return errors.Wrap(err, "read request body")
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.ContentLength = int64(len(data))
	return nil
}

// preserveBody reads resp's body into memory so the connection can be reused
// while the response stays readable by the caller.
func preserveBody(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return nil
}
