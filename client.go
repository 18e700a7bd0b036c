// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opcua

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/edgeo-automation/opcua-view/internal/transport"
)

// Client is an OPC UA TCP client for the view services.
type Client struct {
	addr string
	opts *clientOptions

	transport    *transport.TCPTransport
	requestIDGen RequestIDGenerator
	seqNumGen    SequenceNumberGenerator

	mu      sync.Mutex
	state   ConnectionState
	closed  bool
	closeCh chan struct{}
	metrics *Metrics

	// Secure channel state
	secureChannelID uint32
	tokenID         uint32

	// Session state
	sessionID           NodeID
	authenticationToken NodeID
	sessionTimeout      float64

	logger *slog.Logger
}

// NewClient creates a new OPC UA TCP client.
func NewClient(addr string, opts ...Option) (*Client, error) {
	if addr == "" {
		return nil, errors.New("opcua: address cannot be empty")
	}

	options := defaultOptions()
	if options.endpoint == "" {
		options.endpoint = "opc.tcp://" + addr
	}
	for _, opt := range opts {
		opt(options)
	}

	c := &Client{
		addr:      addr,
		opts:      options,
		transport: transport.NewTCPTransport(addr, options.timeout),
		state:     StateDisconnected,
		closeCh:   make(chan struct{}),
		metrics:   NewMetrics(),
		logger:    options.logger,
	}

	return c, nil
}

// Connect establishes a connection to the OPC UA server and opens an
// unsecured channel.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConnectionClosed
	}
	if c.state >= StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.logger.Debug("connecting", slog.String("addr", c.addr))

	// Establish TCP connection
	if err := c.transport.Connect(ctx); err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state = StateConnected
	c.metrics.ActiveConns.Add(1)
	c.mu.Unlock()

	// Send Hello message
	if err := c.sendHello(ctx); err != nil {
		c.handleDisconnect(err)
		return fmt.Errorf("hello failed: %w", err)
	}

	// Open secure channel
	if err := c.openSecureChannel(ctx); err != nil {
		c.handleDisconnect(err)
		return fmt.Errorf("open secure channel failed: %w", err)
	}

	c.mu.Lock()
	c.state = StateSecureChannelOpen
	c.mu.Unlock()

	c.logger.Info("secure channel opened", slog.String("addr", c.addr))

	return nil
}

// ConnectAndActivateSession connects and activates a session.
func (c *Client) ConnectAndActivateSession(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	// Create session
	if err := c.createSession(ctx); err != nil {
		c.handleDisconnect(err)
		return fmt.Errorf("create session failed: %w", err)
	}

	// Activate session
	if err := c.activateSession(ctx); err != nil {
		c.handleDisconnect(err)
		return fmt.Errorf("activate session failed: %w", err)
	}

	c.mu.Lock()
	c.state = StateSessionActive
	c.metrics.ActiveSessions.Add(1)
	c.mu.Unlock()

	c.logger.Info("session activated", slog.String("addr", c.addr))

	return nil
}

func (c *Client) sendHello(ctx context.Context) error {
	hello := &HelloMessage{
		ProtocolVersion:   ProtocolVersion,
		ReceiveBufferSize: DefaultReceiveBufferSize,
		SendBufferSize:    DefaultSendBufferSize,
		MaxMessageSize:    DefaultMaxMessageSize,
		MaxChunkCount:     MaxChunkCount,
		EndpointURL:       c.opts.endpoint,
	}

	helloData := hello.Encode()
	header := MessageHeader{
		ChunkType:   ChunkTypeFinal,
		MessageSize: uint32(8 + len(helloData)),
	}
	copy(header.MessageType[:], MessageTypeHello)

	msg := append(header.Encode(), helloData...)

	resp, err := c.transport.SendRaw(ctx, msg)
	if err != nil {
		return err
	}

	var respHeader MessageHeader
	if err := respHeader.Decode(resp); err != nil {
		return err
	}

	msgType := string(respHeader.MessageType[:])
	if msgType == MessageTypeError {
		return decodeServerError(resp[8:])
	}
	if msgType != MessageTypeAcknowledge {
		return fmt.Errorf("unexpected message type: %s", msgType)
	}

	var ack AcknowledgeMessage
	if err := ack.Decode(resp[8:]); err != nil {
		return err
	}

	c.logger.Debug("received acknowledge",
		slog.Uint64("protocol_version", uint64(ack.ProtocolVersion)),
		slog.Uint64("receive_buffer", uint64(ack.ReceiveBufferSize)),
		slog.Uint64("send_buffer", uint64(ack.SendBufferSize)))

	return nil
}

func (c *Client) openSecureChannel(ctx context.Context) error {
	// Build OpenSecureChannel request
	e := NewEncoder()

	// Asymmetric security header
	e.WriteString(string(SecurityPolicyNone))
	e.WriteByteString(nil) // No certificate for SecurityPolicyNone
	e.WriteByteString(nil) // Server certificate thumbprint

	// Sequence header
	seqNum := c.seqNumGen.Next()
	reqID := c.requestIDGen.Next()
	e.WriteUInt32(seqNum)
	e.WriteUInt32(reqID)

	// OpenSecureChannelRequest type ID
	e.WriteNodeID(NewNumericNodeID(0, 446))

	// Request header
	header := RequestHeader{
		Timestamp:     currentDateTime(),
		RequestHandle: reqID,
		TimeoutHint:   uint32(c.opts.timeout.Milliseconds()),
	}
	encodeRequestHeader(e, &header)

	// OpenSecureChannelRequest body
	e.WriteUInt32(0)                               // ClientProtocolVersion
	e.WriteUInt32(0)                               // RequestType: Issue
	e.WriteUInt32(uint32(MessageSecurityModeNone)) // SecurityMode
	e.WriteByteString(nil)                         // ClientNonce
	e.WriteUInt32(3600000)                         // RequestedLifetime (1 hour in ms)

	body := e.Bytes()

	msgHeader := MessageHeader{
		ChunkType:   ChunkTypeFinal,
		MessageSize: uint32(8 + 4 + len(body)), // header + secure channel ID + body
	}
	copy(msgHeader.MessageType[:], MessageTypeOpenChannel)

	msg := make([]byte, 0, msgHeader.MessageSize)
	msg = append(msg, msgHeader.Encode()...)
	msg = append(msg, 0, 0, 0, 0) // Secure channel ID = 0 for initial request
	msg = append(msg, body...)

	resp, err := c.transport.SendRaw(ctx, msg)
	if err != nil {
		return err
	}

	var respHeader MessageHeader
	if err := respHeader.Decode(resp); err != nil {
		return err
	}
	if string(respHeader.MessageType[:]) == MessageTypeError {
		return decodeServerError(resp[8:])
	}

	// Parse response: header(8) + secureChannelID(4) + asymmetric security
	// header + sequence header + type NodeID + response header + body.
	d := NewDecoder(resp[12:])

	_, _ = d.ReadString()     // security policy URI
	_, _ = d.ReadByteString() // sender certificate
	_, _ = d.ReadByteString() // receiver thumbprint
	_, _ = d.ReadUInt32()     // sequence number
	_, _ = d.ReadUInt32()     // request id
	_, _ = d.ReadNodeID()     // response type NodeID

	respHeaderBody, err := decodeResponseHeader(d)
	if err != nil {
		return err
	}
	if respHeaderBody.ServiceResult.IsBad() {
		return fmt.Errorf("open secure channel failed: %s", respHeaderBody.ServiceResult.Error())
	}

	// OpenSecureChannelResponse body
	_, _ = d.ReadUInt32() // ServerProtocolVersion

	channelID, _ := d.ReadUInt32()
	tokenID, err := d.ReadUInt32()
	if err != nil {
		return err
	}

	c.secureChannelID = channelID
	c.tokenID = tokenID

	c.logger.Debug("secure channel opened",
		slog.Uint64("channel_id", uint64(c.secureChannelID)),
		slog.Uint64("token_id", uint64(c.tokenID)))

	return nil
}

func (c *Client) createSession(ctx context.Context) error {
	e := NewEncoder()

	header := RequestHeader{
		Timestamp:     currentDateTime(),
		RequestHandle: c.requestIDGen.Next(),
		TimeoutHint:   uint32(c.opts.timeout.Milliseconds()),
	}
	encodeRequestHeader(e, &header)

	// ClientDescription (ApplicationDescription)
	e.WriteString(c.opts.applicationURI)
	e.WriteString(c.opts.productURI)
	e.WriteLocalizedText(LocalizedText{Text: c.opts.applicationName})
	e.WriteUInt32(uint32(ApplicationTypeClient))
	e.WriteString("") // GatewayServerURI
	e.WriteString("") // DiscoveryProfileURI
	e.WriteInt32(-1)  // DiscoveryURLs (null)

	e.WriteString("")              // ServerURI
	e.WriteString(c.opts.endpoint) // EndpointURL
	e.WriteString(c.opts.sessionName)
	e.WriteByteString(nil) // ClientNonce
	e.WriteByteString(nil) // ClientCertificate
	e.WriteDouble(float64(c.opts.sessionTimeout.Milliseconds()))
	e.WriteUInt32(DefaultMaxMessageSize)

	resp, err := c.sendRaw(ctx, ServiceCreateSession, e.Bytes())
	if err != nil {
		return err
	}

	d := NewDecoder(resp)
	respHeader, err := decodeResponseHeader(d)
	if err != nil {
		return err
	}
	if respHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceCreateSession, respHeader.ServiceResult, "")
	}

	c.sessionID, err = d.ReadNodeID()
	if err != nil {
		return err
	}
	c.authenticationToken, err = d.ReadNodeID()
	if err != nil {
		return err
	}
	c.sessionTimeout, err = d.ReadDouble()
	if err != nil {
		return err
	}

	c.logger.Debug("session created",
		slog.String("session_id", c.sessionID.Text()))

	return nil
}

func (c *Client) activateSession(ctx context.Context) error {
	e := NewEncoder()

	header := RequestHeader{
		AuthenticationToken: c.authenticationToken,
		Timestamp:           currentDateTime(),
		RequestHandle:       c.requestIDGen.Next(),
		TimeoutHint:         uint32(c.opts.timeout.Milliseconds()),
	}
	encodeRequestHeader(e, &header)

	// ClientSignature
	e.WriteString("")      // Algorithm
	e.WriteByteString(nil) // Signature

	e.WriteInt32(0) // ClientSoftwareCertificates
	e.WriteInt32(0) // LocaleIDs

	// UserIdentityToken (null ExtensionObject; the server accepts anonymous)
	e.WriteNodeID(NodeID{})
	e.WriteByte(0x00)

	// UserTokenSignature
	e.WriteString("")
	e.WriteByteString(nil)

	resp, err := c.sendRaw(ctx, ServiceActivateSession, e.Bytes())
	if err != nil {
		return err
	}

	d := NewDecoder(resp)
	respHeader, err := decodeResponseHeader(d)
	if err != nil {
		return err
	}
	if respHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceActivateSession, respHeader.ServiceResult, "")
	}

	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	wasConnected := c.state >= StateConnected
	c.state = StateDisconnected
	close(c.closeCh)
	c.mu.Unlock()

	if wasConnected {
		c.metrics.ActiveConns.Add(-1)
	}

	return c.transport.Close()
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the client has an open connection.
func (c *Client) IsConnected() bool {
	return c.State() >= StateConnected
}

// IsSessionActive reports whether a session has been activated.
func (c *Client) IsSessionActive() bool {
	return c.State() == StateSessionActive
}

// Metrics returns the client metrics.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Address returns the server address.
func (c *Client) Address() string {
	return c.addr
}

func (c *Client) handleDisconnect(err error) {
	c.mu.Lock()
	wasSessionActive := c.state == StateSessionActive
	wasConnected := c.state >= StateConnected
	c.state = StateDisconnected
	c.mu.Unlock()

	if wasSessionActive {
		c.metrics.ActiveSessions.Add(-1)
	}
	if wasConnected {
		c.metrics.ActiveConns.Add(-1)
	}

	c.transport.Close()

	c.logger.Debug("disconnected", slog.String("error", err.Error()))
}

func (c *Client) reconnect(ctx context.Context) error {
	time.Sleep(c.opts.reconnectBackoff)
	c.metrics.Reconnections.Add(1)
	return c.ConnectAndActivateSession(ctx)
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrNotConnected) || errors.Is(err, ErrConnectionClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// send encodes and sends a service request and returns the response body
// positioned after the response type NodeID.
func (c *Client) send(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error
	maxRetries := 1
	if c.opts.autoReconnect {
		maxRetries = c.opts.maxRetries
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request",
				slog.Int("attempt", attempt+1),
				slog.Int("max", maxRetries))

			if err := c.reconnect(ctx); err != nil {
				lastErr = err
				continue
			}
		}

		reqData, err := req.Encode()
		if err != nil {
			return nil, err
		}

		resp, err := c.sendRaw(ctx, req.ServiceID(), reqData)
		if err != nil {
			lastErr = err
			if !c.opts.autoReconnect || !isRetryableError(err) {
				return nil, err
			}
			c.handleDisconnect(err)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func (c *Client) sendRaw(ctx context.Context, serviceID ServiceID, reqData []byte) ([]byte, error) {
	c.mu.Lock()
	if c.state < StateSecureChannelOpen {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	c.mu.Unlock()

	start := time.Now()
	c.metrics.RequestsTotal.Add(1)

	// Build message
	e := NewEncoder()

	// Security header (symmetric)
	e.WriteUInt32(c.tokenID)

	// Sequence header
	seqNum := c.seqNumGen.Next()
	reqID := c.requestIDGen.Next()
	e.WriteUInt32(seqNum)
	e.WriteUInt32(reqID)

	// Service request type ID
	e.WriteNodeID(NewNumericNodeID(0, uint32(serviceID)))

	// Request data
	e.buf.Write(reqData)

	body := e.Bytes()

	// Message header
	header := MessageHeader{
		ChunkType:   ChunkTypeFinal,
		MessageSize: uint32(8 + 4 + len(body)), // header + secure channel ID + body
	}
	copy(header.MessageType[:], MessageTypeMessage)

	msg := make([]byte, 0, header.MessageSize)
	msg = append(msg, header.Encode()...)

	var scID [4]byte
	scID[0] = byte(c.secureChannelID)
	scID[1] = byte(c.secureChannelID >> 8)
	scID[2] = byte(c.secureChannelID >> 16)
	scID[3] = byte(c.secureChannelID >> 24)
	msg = append(msg, scID[:]...)

	msg = append(msg, body...)

	c.logger.Debug("sending request",
		slog.String("service", serviceID.String()),
		slog.Uint64("request_id", uint64(reqID)))

	respData, err := c.transport.SendRaw(ctx, msg)
	if err != nil {
		c.metrics.RequestsErrors.Add(1)
		return nil, err
	}

	var respHeader MessageHeader
	if err := respHeader.Decode(respData); err != nil {
		c.metrics.RequestsErrors.Add(1)
		return nil, err
	}

	if string(respHeader.MessageType[:]) == MessageTypeError {
		c.metrics.RequestsErrors.Add(1)
		return nil, decodeServerError(respData[8:])
	}

	// Structure: header(8) + secureChannelID(4) + tokenID(4) +
	// sequenceHeader(8) + NodeID + body
	if len(respData) < 24 {
		c.metrics.RequestsErrors.Add(1)
		return nil, ErrInvalidResponse
	}

	d := NewDecoder(respData[24:])
	if _, err := d.ReadNodeID(); err != nil {
		c.metrics.RequestsErrors.Add(1)
		return nil, fmt.Errorf("failed to read response type: %w", err)
	}

	duration := time.Since(start)
	c.metrics.RequestsSuccess.Add(1)
	c.metrics.Latency.Observe(duration)

	sm := c.metrics.ForService(serviceID)
	sm.Requests.Add(1)
	sm.Latency.Observe(duration)

	return d.Rest(), nil
}

func decodeServerError(body []byte) error {
	var errMsg ErrorMessage
	if err := errMsg.Decode(body); err != nil {
		return err
	}
	sc := StatusCode(errMsg.Error)
	if errMsg.Reason != "" {
		return fmt.Errorf("server error: %s: %s", sc.Error(), errMsg.Reason)
	}
	return fmt.Errorf("server error: %s", sc.Error())
}

// Browse browses the given nodes. A maxReferencesPerNode of zero lets the
// server decide how many references to return before paginating.
func (c *Client) Browse(ctx context.Context, nodesToBrowse []BrowseDescription, maxReferencesPerNode uint32) ([]BrowseResult, error) {
	req := &BrowseRequest{
		RequestHeader: RequestHeader{
			AuthenticationToken: c.authenticationToken,
			Timestamp:           currentDateTime(),
			RequestHandle:       c.requestIDGen.Next(),
			TimeoutHint:         uint32(c.opts.timeout.Milliseconds()),
		},
		RequestedMaxReferencesPerNode: maxReferencesPerNode,
		NodesToBrowse:                 nodesToBrowse,
	}

	respData, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp BrowseResponse
	if err := resp.Decode(respData); err != nil {
		return nil, err
	}

	return resp.Results, nil
}

// BrowseNode browses the forward or inverse references of a single node and
// returns the first page only; a continuation point in the result is not
// followed, so the server's per-node reference cap can truncate the list.
func (c *Client) BrowseNode(ctx context.Context, nodeID NodeID, direction BrowseDirection) ([]ReferenceDescription, error) {
	results, err := c.Browse(ctx, []BrowseDescription{{
		NodeID:          nodeID,
		BrowseDirection: direction,
		IncludeSubtypes: true,
		ResultMask:      BrowseResultMaskAll,
	}}, 0)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrInvalidResponse
	}
	if results[0].StatusCode.IsBad() {
		return nil, NewOPCUAError(ServiceBrowse, results[0].StatusCode, "")
	}
	return results[0].References, nil
}

// BrowseNext resumes or releases continuation points from a previous browse.
func (c *Client) BrowseNext(ctx context.Context, release bool, continuationPoints [][]byte) ([]BrowseResult, error) {
	req := &BrowseNextRequest{
		RequestHeader: RequestHeader{
			AuthenticationToken: c.authenticationToken,
			Timestamp:           currentDateTime(),
			RequestHandle:       c.requestIDGen.Next(),
			TimeoutHint:         uint32(c.opts.timeout.Milliseconds()),
		},
		ReleaseContinuationPoints: release,
		ContinuationPoints:        continuationPoints,
	}

	respData, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp BrowseNextResponse
	if err := resp.Decode(respData); err != nil {
		return nil, err
	}

	return resp.Results, nil
}

// BrowseAll browses a node and drains any continuation points, returning
// the full reference list.
func (c *Client) BrowseAll(ctx context.Context, descr BrowseDescription, maxReferencesPerNode uint32) ([]ReferenceDescription, error) {
	results, err := c.Browse(ctx, []BrowseDescription{descr}, maxReferencesPerNode)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrInvalidResponse
	}

	result := results[0]
	if result.StatusCode.IsBad() {
		return nil, NewOPCUAError(ServiceBrowse, result.StatusCode, "")
	}

	refs := result.References
	for len(result.ContinuationPoint) > 0 {
		next, err := c.BrowseNext(ctx, false, [][]byte{result.ContinuationPoint})
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			return nil, ErrInvalidResponse
		}
		result = next[0]
		if result.StatusCode.IsBad() {
			return nil, NewOPCUAError(ServiceBrowseNext, result.StatusCode, "")
		}
		refs = append(refs, result.References...)
	}

	return refs, nil
}

// TranslateBrowsePaths resolves the given browse paths to node identifiers.
func (c *Client) TranslateBrowsePaths(ctx context.Context, paths []BrowsePath) ([]BrowsePathResult, error) {
	req := &TranslateBrowsePathsRequest{
		RequestHeader: RequestHeader{
			AuthenticationToken: c.authenticationToken,
			Timestamp:           currentDateTime(),
			RequestHandle:       c.requestIDGen.Next(),
			TimeoutHint:         uint32(c.opts.timeout.Milliseconds()),
		},
		BrowsePaths: paths,
	}

	respData, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp TranslateBrowsePathsResponse
	if err := resp.Decode(respData); err != nil {
		return nil, err
	}

	return resp.Results, nil
}

// RegisterNodes registers node identifiers with the server and returns the
// identifiers to use for subsequent access.
func (c *Client) RegisterNodes(ctx context.Context, nodesToRegister []NodeID) ([]NodeID, error) {
	req := &RegisterNodesRequest{
		RequestHeader: RequestHeader{
			AuthenticationToken: c.authenticationToken,
			Timestamp:           currentDateTime(),
			RequestHandle:       c.requestIDGen.Next(),
			TimeoutHint:         uint32(c.opts.timeout.Milliseconds()),
		},
		NodesToRegister: nodesToRegister,
	}

	respData, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp RegisterNodesResponse
	if err := resp.Decode(respData); err != nil {
		return nil, err
	}

	return resp.RegisteredNodeIDs, nil
}

// UnregisterNodes unregisters previously registered node identifiers.
func (c *Client) UnregisterNodes(ctx context.Context, nodesToUnregister []NodeID) error {
	req := &UnregisterNodesRequest{
		RequestHeader: RequestHeader{
			AuthenticationToken: c.authenticationToken,
			Timestamp:           currentDateTime(),
			RequestHandle:       c.requestIDGen.Next(),
			TimeoutHint:         uint32(c.opts.timeout.Milliseconds()),
		},
		NodesToUnregister: nodesToUnregister,
	}

	respData, err := c.send(ctx, req)
	if err != nil {
		return err
	}

	var resp UnregisterNodesResponse
	return resp.Decode(respData)
}

// GetEndpoints requests the endpoint descriptions of the server.
func (c *Client) GetEndpoints(ctx context.Context) ([]EndpointDescription, error) {
	req := &GetEndpointsRequest{
		RequestHeader: RequestHeader{
			Timestamp:     currentDateTime(),
			RequestHandle: c.requestIDGen.Next(),
			TimeoutHint:   uint32(c.opts.timeout.Milliseconds()),
		},
		EndpointURL: c.opts.endpoint,
	}

	reqData, err := req.Encode()
	if err != nil {
		return nil, err
	}

	respData, err := c.sendRaw(ctx, ServiceGetEndpoints, reqData)
	if err != nil {
		return nil, err
	}

	var resp GetEndpointsResponse
	if err := resp.Decode(respData); err != nil {
		return nil, err
	}

	return resp.Endpoints, nil
}
