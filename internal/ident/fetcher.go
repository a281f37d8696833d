// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package ident

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xmidt-org/eventor"
	"github.com/xmidt-org/ident-agent/internal/ident/event"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrTransport        = errors.New("transport failure")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrDecode           = errors.New("decode failure")
)

const (
	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "ident-agent"

	// maxBodySize bounds how much of a response is read.
	maxBodySize = 1 << 20
)

var (
	// DefaultV4Endpoints are the IPv4 identity endpoints, primary first.
	DefaultV4Endpoints = []string{
		"https://4.ident.me/json",
		"https://4.tnedi.me/json",
	}

	// DefaultV6Endpoints are the IPv6 identity endpoints, primary first.
	DefaultV6Endpoints = []string{
		"https://6.ident.me/json",
		"https://6.tnedi.me/json",
	}
)

// Resolver looks up the addresses of a host.  *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Enricher fills in fields of a successfully fetched record.
type Enricher interface {
	Enrich(*IdentityRecord)
}

/*
Notes:
  - The stack is enforced by the dialer, not by the endpoint hostname.
  - The timeout is set via the http.Client.
  - TLS settings are set via the http.Client.
*/
type Fetcher struct {
	stack          Stack
	endpoints      []string
	client         *http.Client
	userAgent      string
	resolver       Resolver
	enricher       Enricher
	nowFunc        func() time.Time
	fetchListeners eventor.Eventor[event.FetchListener]
}

// Option is the interface implemented by types that can be used to
// configure the fetcher.
type Option interface {
	apply(*Fetcher) error
}

// New creates a new Fetcher bound to one stack.  The stack must be given
// with WithStack.
func New(opts ...Option) (*Fetcher, error) {
	vadors := []Option{
		stackVador(),
		endpointsVador(),
		pinClient(),
	}

	f := Fetcher{
		client:    http.DefaultClient,
		userAgent: DefaultUserAgent,
		resolver:  net.DefaultResolver,
		nowFunc:   time.Now,
	}

	opts = append(opts, vadors...)

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt.apply(&f)
		if err != nil {
			return nil, err
		}
	}

	return &f, nil
}

// Stack returns the stack the fetcher is pinned to.
func (f *Fetcher) Stack() Stack {
	return f.stack
}

// Endpoints returns a copy of the endpoints in the order they are tried.
func (f *Fetcher) Endpoints() []string {
	return append([]string(nil), f.endpoints...)
}

// Fetch requests the identity record, trying each endpoint in order.  The
// next endpoint is only tried when the previous one could not be reached or
// answered with a non-2xx status.  The result is never the zero value.
func (f *Fetcher) Fetch(ctx context.Context) StackResult {
	msgs := make([]string, 0, len(f.endpoints))

	for _, endpoint := range f.endpoints {
		rec, err := f.fetch(ctx, endpoint)
		if err == nil {
			if f.enricher != nil {
				f.enricher.Enrich(rec)
			}
			return Success(rec)
		}

		msgs = append(msgs, err.Error())

		if !errors.Is(err, ErrTransport) && !errors.Is(err, ErrUnexpectedStatus) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	return Failure(strings.Join(msgs, "; "))
}

// fetch makes a single attempt against one endpoint.
func (f *Fetcher) fetch(ctx context.Context, endpoint string) (*IdentityRecord, error) {
	fe := event.Fetch{
		Stack:    f.stack.ToEvent(),
		Endpoint: endpoint,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		fe.Err = fmt.Errorf("%w: %w", ErrTransport, err)
		return nil, f.dispatch(fe)
	}

	tid, err := uuid.NewRandom()
	if err == nil {
		fe.UUID = tid
		req.Header.Set("X-Request-Id", tid.String())
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.userAgent)

	fe.At = f.nowFunc()
	resp, err := f.client.Do(req)
	fe.Duration = f.nowFunc().Sub(fe.At)
	if err != nil {
		fe.Err = fmt.Errorf("%w: %w", ErrTransport, err)
		return nil, f.dispatch(fe)
	}
	defer resp.Body.Close()

	fe.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		fe.Err = fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, endpoint)
		return nil, f.dispatch(fe)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		fe.Err = fmt.Errorf("%w: %w", ErrTransport, err)
		return nil, f.dispatch(fe)
	}

	rec, err := Decode(body)
	if err != nil {
		fe.Err = err
		return nil, f.dispatch(fe)
	}

	fe.Address = rec.Address
	return rec, f.dispatch(fe)
}

// dispatch dispatches the event to the listeners and returns the error that
// should be returned by the caller.
func (f *Fetcher) dispatch(evnt any) error {
	switch evnt := evnt.(type) {
	case event.Fetch:
		f.fetchListeners.Visit(func(listener event.FetchListener) {
			listener.OnFetch(evnt)
		})
		return evnt.Err
	}

	panic("unknown event type")
}

// pinnedTransport returns a copy of base whose connections can only be made
// over the given stack.  Hostnames are resolved with the resolver and only the
// addresses of the stack's family are dialed.
func pinnedTransport(base *http.Transport, stack Stack, resolver Resolver) *http.Transport {
	t := base.Clone()

	// A proxy would dial on our behalf and defeat the pinning.
	t.Proxy = nil

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	t.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		if ip := net.ParseIP(host); ip != nil {
			if !stack.Matches(ip) {
				return nil, &net.DNSError{
					Err:        fmt.Sprintf("address %s is not an %s address", host, stack),
					Name:       host,
					IsNotFound: true,
				}
			}
			return dialer.DialContext(ctx, stack.Network(), addr)
		}

		addrs, err := resolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, err
		}

		var lastErr error
		for _, a := range addrs {
			if !stack.Matches(a.IP) {
				continue
			}

			ip := a.IP.String()
			if a.Zone != "" {
				ip += "%" + a.Zone
			}

			conn, err := dialer.DialContext(ctx, stack.Network(), net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}

		if lastErr != nil {
			return nil, lastErr
		}

		return nil, &net.DNSError{
			Err:        fmt.Sprintf("no %s address", stack),
			Name:       host,
			IsNotFound: true,
		}
	}

	return t
}
