package opcua

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Server is an OPC UA TCP server exposing the view services over a node
// store.
type Server struct {
	addr     string
	opts     *serverOptions
	store    NodeStore
	view     *ViewService
	listener net.Listener
	metrics  *ServerMetrics
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	closeCh   chan struct{}
	sessions  sync.Map // secureChannelID -> *serverSession
	connCount int32
}

// serverSession ties a secure channel to its view-service session.
type serverSession struct {
	secureChannelID uint32
	tokenID         uint32
	conn            net.Conn
	seqNumGen       SequenceNumberGenerator
	session         *Session
	lastActivity    time.Time
}

// NewServer creates a new OPC UA TCP server over the given node store.
func NewServer(addr string, store NodeStore, opts ...ServerOption) (*Server, error) {
	if addr == "" {
		return nil, errors.New("opcua: address cannot be empty")
	}
	if store == nil {
		return nil, errors.New("opcua: node store cannot be nil")
	}

	options := defaultServerOptions()
	options.endpoint = addr
	for _, opt := range opts {
		opt(options)
	}

	metrics := NewServerMetrics()
	return &Server{
		addr:    addr,
		opts:    options,
		store:   store,
		view:    NewViewService(store, options.limits, options.logger, metrics),
		metrics: metrics,
		logger:  options.logger,
		closeCh: make(chan struct{}),
	}, nil
}

// Start starts the server.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("opcua: server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("opcua: listen failed: %w", err)
	}

	s.listener = listener
	s.running = true
	s.mu.Unlock()

	s.logger.Info("server started", slog.String("addr", s.addr))

	go s.acceptLoop()

	return nil
}

// Stop stops the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.closeCh)
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}

	// Close all sessions
	s.sessions.Range(func(key, value interface{}) bool {
		session := value.(*serverSession)
		session.conn.Close()
		return true
	})

	s.logger.Info("server stopped")
	return nil
}

// Addr returns the address the server is listening on. Useful when the
// server was started on port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Metrics returns the server metrics.
func (s *Server) Metrics() *ServerMetrics {
	return s.metrics
}

// View returns the view service backing this server.
func (s *Server) View() *ViewService {
	return s.view
}

// Browse is the direct-call variant of the Browse service. It runs on the
// admin session.
func (s *Server) Browse(maxRefs uint32, descr *BrowseDescription) BrowseResult {
	return s.view.BrowseDirect(descr, maxRefs)
}

// BrowseNext is the direct-call variant of the BrowseNext service on the
// admin session.
func (s *Server) BrowseNext(release bool, continuationPoint []byte) BrowseResult {
	return s.view.BrowseNextDirect(release, continuationPoint)
}

// TranslateBrowsePath is the direct-call variant of
// TranslateBrowsePathsToNodeIds on the admin session.
func (s *Server) TranslateBrowsePath(path *BrowsePath) BrowsePathResult {
	return s.view.TranslateBrowsePathDirect(path)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
				s.logger.Error("accept failed", slog.String("error", err.Error()))
				continue
			}
		}

		// Check connection limit
		if int(atomic.LoadInt32(&s.connCount)) >= s.opts.maxConns {
			s.logger.Warn("connection limit reached, rejecting connection")
			conn.Close()
			continue
		}

		atomic.AddInt32(&s.connCount, 1)
		s.metrics.ActiveConnections.Add(1)

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	var session *serverSession

	defer func() {
		if session != nil {
			s.closeServerSession(session)
		}
		conn.Close()
		atomic.AddInt32(&s.connCount, -1)
		s.metrics.ActiveConnections.Add(-1)
	}()

	// Enable TCP keep-alive
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(30 * time.Second)
		tcpConn.SetNoDelay(true)
	}

	s.logger.Debug("new connection", slog.String("remote", conn.RemoteAddr().String()))

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		// Set read timeout
		conn.SetReadDeadline(time.Now().Add(s.opts.readTimeout))

		// Read message header
		header := make([]byte, 8)
		_, err := io.ReadFull(conn, header)
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				s.logger.Debug("read header failed", slog.String("error", err.Error()))
			}
			return
		}

		msgType := string(header[0:3])
		messageSize := binary.LittleEndian.Uint32(header[4:8])

		if messageSize < 8 || messageSize > DefaultMaxMessageSize {
			s.logger.Warn("invalid message size", slog.Uint64("size", uint64(messageSize)))
			return
		}

		// Read message body
		body := make([]byte, messageSize-8)
		_, err = io.ReadFull(conn, body)
		if err != nil {
			s.logger.Debug("read body failed", slog.String("error", err.Error()))
			return
		}

		s.metrics.TotalRequests.Add(1)

		// Handle message based on type
		var response []byte
		switch msgType {
		case MessageTypeHello:
			response, err = s.handleHello(body)
		case MessageTypeOpenChannel:
			response, session, err = s.handleOpenSecureChannel(conn, body)
		case MessageTypeMessage:
			response, err = s.handleMessage(session, body)
		case MessageTypeCloseChannel:
			s.handleCloseSecureChannel(session)
			session = nil
			return
		default:
			s.logger.Warn("unknown message type", slog.String("type", msgType))
			return
		}

		if err != nil {
			s.logger.Debug("handle message failed", slog.String("error", err.Error()))
			s.metrics.Errors.Add(1)
			// Send error response
			errResp := s.buildErrorResponse(uint32(StatusBadInternalError), err.Error())
			conn.Write(errResp)
			return
		}

		if response != nil {
			conn.SetWriteDeadline(time.Now().Add(s.opts.readTimeout))
			_, err = conn.Write(response)
			if err != nil {
				s.logger.Debug("write response failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (s *Server) handleHello(body []byte) ([]byte, error) {
	var hello HelloMessage
	if err := hello.Decode(body); err != nil {
		return nil, err
	}

	s.logger.Debug("received hello",
		slog.String("endpoint", hello.EndpointURL),
		slog.Uint64("protocol_version", uint64(hello.ProtocolVersion)))

	// Build Acknowledge response
	ack := AcknowledgeMessage{
		ProtocolVersion:   ProtocolVersion,
		ReceiveBufferSize: DefaultReceiveBufferSize,
		SendBufferSize:    DefaultSendBufferSize,
		MaxMessageSize:    DefaultMaxMessageSize,
		MaxChunkCount:     MaxChunkCount,
	}

	ackData := ack.Encode()
	header := MessageHeader{
		ChunkType:   ChunkTypeFinal,
		MessageSize: uint32(8 + len(ackData)),
	}
	copy(header.MessageType[:], MessageTypeAcknowledge)

	return append(header.Encode(), ackData...), nil
}

func (s *Server) handleOpenSecureChannel(conn net.Conn, body []byte) ([]byte, *serverSession, error) {
	if len(body) < 4 {
		return nil, nil, fmt.Errorf("%w: open channel message too short", ErrInvalidMessage)
	}

	session := &serverSession{
		secureChannelID: uint32(time.Now().UnixNano() & 0xFFFFFFFF),
		tokenID:         uint32(time.Now().UnixNano()>>8) | 1,
		conn:            conn,
		session:         s.view.NewSession(),
		lastActivity:    time.Now(),
	}

	s.sessions.Store(session.secureChannelID, session)
	s.metrics.ActiveSessions.Add(1)

	s.logger.Debug("opened secure channel",
		slog.Uint64("channel_id", uint64(session.secureChannelID)),
		slog.Uint64("token_id", uint64(session.tokenID)))

	// Build response
	e := NewEncoder()

	// Secure channel ID
	e.WriteUInt32(session.secureChannelID)

	// Security header
	e.WriteString(string(SecurityPolicyNone))
	e.WriteByteString(nil) // Sender certificate
	e.WriteByteString(nil) // Receiver certificate thumbprint

	// Sequence header
	seqNum := session.seqNumGen.Next()
	e.WriteUInt32(seqNum)
	e.WriteUInt32(1) // Request ID

	// OpenSecureChannelResponse type ID
	e.WriteNodeID(NewNumericNodeID(0, 449))

	// Response header
	e.WriteInt64(currentDateTime())
	e.WriteUInt32(1)              // RequestHandle
	e.WriteStatusCode(StatusGood) // ServiceResult
	e.WriteByte(0)                // ServiceDiagnostics (null)
	e.WriteInt32(0)               // StringTable (empty)
	e.WriteNodeID(NodeID{})       // AdditionalHeader TypeId
	e.WriteByte(0)                // AdditionalHeader Encoding

	// OpenSecureChannelResponse body
	e.WriteUInt32(0)                       // ServerProtocolVersion
	e.WriteUInt32(session.secureChannelID) // SecurityToken.ChannelId
	e.WriteUInt32(session.tokenID)         // SecurityToken.TokenId
	e.WriteInt64(currentDateTime())        // SecurityToken.CreatedAt
	e.WriteUInt32(3600000)                 // SecurityToken.RevisedLifetime
	e.WriteByteString(nil)                 // ServerNonce

	responseBody := e.Bytes()

	// Build message header
	header := MessageHeader{
		ChunkType:   ChunkTypeFinal,
		MessageSize: uint32(8 + len(responseBody)),
	}
	copy(header.MessageType[:], MessageTypeOpenChannel)

	return append(header.Encode(), responseBody...), session, nil
}

func (s *Server) handleMessage(session *serverSession, body []byte) ([]byte, error) {
	if session == nil {
		return nil, errors.New("opcua: no active secure channel")
	}

	session.lastActivity = time.Now()

	// Skip secure channel ID (4 bytes) + token ID (4 bytes) + sequence header (8 bytes)
	if len(body) < 16 {
		return nil, fmt.Errorf("%w: message too short", ErrInvalidMessage)
	}

	// Find request type ID
	d := NewDecoder(body[16:])
	typeID, err := d.ReadNodeID()
	if err != nil {
		return nil, fmt.Errorf("failed to read type ID: %w", err)
	}

	serviceID := ServiceID(typeID.Numeric)

	s.logger.Debug("handling service request",
		slog.String("service", serviceID.String()),
		slog.Uint64("type_id", uint64(typeID.Numeric)))

	start := time.Now()
	sm := s.metrics.ForService(serviceID)
	sm.Requests.Add(1)

	var responseBody []byte
	switch serviceID {
	case ServiceGetEndpoints:
		responseBody, err = s.handleGetEndpoints(d)
	case ServiceCreateSession:
		responseBody, err = s.handleCreateSession(session, d)
	case ServiceActivateSession:
		responseBody, err = s.handleActivateSession(session, d)
	case ServiceCloseSession:
		responseBody, err = s.handleCloseSession(session, d)
	case ServiceBrowse:
		responseBody, err = s.handleBrowse(session, d)
	case ServiceBrowseNext:
		responseBody, err = s.handleBrowseNext(session, d)
	case ServiceTranslateBrowsePathsToNodeIds:
		responseBody, err = s.handleTranslateBrowsePaths(session, d)
	case ServiceRegisterNodes:
		responseBody, err = s.handleRegisterNodes(session, d)
	case ServiceUnregisterNodes:
		responseBody, err = s.handleUnregisterNodes(session, d)
	default:
		err = fmt.Errorf("opcua: unsupported service: %s", serviceID)
	}

	if err != nil {
		sm.Errors.Add(1)
		return nil, err
	}

	sm.Latency.Observe(time.Since(start))
	s.metrics.Latency.Observe(time.Since(start))

	// Build response message
	e := NewEncoder()

	// Secure channel ID
	e.WriteUInt32(session.secureChannelID)

	// Security header
	e.WriteUInt32(session.tokenID)

	// Sequence header
	seqNum := session.seqNumGen.Next()
	e.WriteUInt32(seqNum)
	e.WriteUInt32(1) // Request ID

	// Response type ID (service ID + 3 for response)
	e.WriteNodeID(NewNumericNodeID(0, uint32(serviceID)+3))

	// Response body
	e.buf.Write(responseBody)

	msgBody := e.Bytes()

	// Message header
	msgHeader := MessageHeader{
		ChunkType:   ChunkTypeFinal,
		MessageSize: uint32(8 + len(msgBody)),
	}
	copy(msgHeader.MessageType[:], MessageTypeMessage)

	return append(msgHeader.Encode(), msgBody...), nil
}

func (s *Server) handleCloseSecureChannel(session *serverSession) {
	if session == nil {
		return
	}
	s.closeServerSession(session)
	s.logger.Debug("closed secure channel",
		slog.Uint64("channel_id", uint64(session.secureChannelID)))
}

func (s *Server) closeServerSession(session *serverSession) {
	if _, loaded := s.sessions.LoadAndDelete(session.secureChannelID); !loaded {
		return
	}
	s.view.CloseSession(session.session)
	s.metrics.ActiveSessions.Add(-1)
}

func (s *Server) handleGetEndpoints(d *Decoder) ([]byte, error) {
	e := NewEncoder()

	var header ResponseHeader
	header.Timestamp = currentDateTime()
	header.RequestHandle = 1
	encodeResponseHeader(e, &header)

	// Endpoints array (1 endpoint)
	e.WriteInt32(1)

	// EndpointDescription
	e.WriteString(s.opts.endpoint) // EndpointURL

	// Server (ApplicationDescription)
	e.WriteString(s.opts.applicationURI)
	e.WriteString(s.opts.productURI)
	e.WriteLocalizedText(LocalizedText{Text: s.opts.applicationName})
	e.WriteUInt32(uint32(ApplicationTypeServer))
	e.WriteString("") // GatewayServerURI
	e.WriteString("") // DiscoveryProfileURI
	e.WriteInt32(1)   // DiscoveryURLs
	e.WriteString(s.opts.endpoint)

	e.WriteByteString(s.opts.certificate) // ServerCertificate
	e.WriteUInt32(uint32(MessageSecurityModeNone))
	e.WriteString(string(SecurityPolicyNone))

	// UserIdentityTokens (1 token - anonymous)
	e.WriteInt32(1)
	e.WriteString("anonymous")
	e.WriteUInt32(uint32(UserTokenTypeAnonymous))
	e.WriteString("")
	e.WriteString("")
	e.WriteString("")

	e.WriteString("http://opcfoundation.org/UA-Profile/Transport/uatcp-uasc-uabinary")
	e.WriteByte(0) // SecurityLevel

	return e.Bytes(), nil
}

func (s *Server) handleCreateSession(session *serverSession, d *Decoder) ([]byte, error) {
	e := NewEncoder()

	var header ResponseHeader
	header.Timestamp = currentDateTime()
	header.RequestHandle = 1
	encodeResponseHeader(e, &header)

	authToken := NewNumericNodeID(0, session.session.ID)
	session.session.AuthenticationToken = authToken

	e.WriteNodeID(NewNumericNodeID(1, session.session.ID)) // SessionId
	e.WriteNodeID(authToken)                               // AuthenticationToken
	e.WriteDouble(3600000)                                 // RevisedSessionTimeout (ms)
	e.WriteByteString(nil)                                 // ServerNonce
	e.WriteByteString(s.opts.certificate)                  // ServerCertificate
	e.WriteInt32(0)                                        // ServerEndpoints (empty)
	e.WriteInt32(0)                                        // ServerSoftwareCertificates (empty)
	e.WriteString("")                                      // ServerSignature.Algorithm
	e.WriteByteString(nil)                                 // ServerSignature.Signature
	e.WriteUInt32(0)                                       // MaxRequestMessageSize

	return e.Bytes(), nil
}

func (s *Server) handleActivateSession(session *serverSession, d *Decoder) ([]byte, error) {
	e := NewEncoder()

	var header ResponseHeader
	header.Timestamp = currentDateTime()
	header.RequestHandle = 1
	encodeResponseHeader(e, &header)

	e.WriteByteString(nil) // ServerNonce
	e.WriteInt32(0)        // Results (empty)
	e.WriteInt32(0)        // DiagnosticInfos (empty)

	return e.Bytes(), nil
}

func (s *Server) handleCloseSession(session *serverSession, d *Decoder) ([]byte, error) {
	s.view.CloseSession(session.session)

	e := NewEncoder()

	var header ResponseHeader
	header.Timestamp = currentDateTime()
	header.RequestHandle = 1
	encodeResponseHeader(e, &header)

	return e.Bytes(), nil
}

func (s *Server) handleBrowse(session *serverSession, d *Decoder) ([]byte, error) {
	var req BrowseRequest
	if err := req.Decode(d.Rest()); err != nil {
		return nil, err
	}

	resp := s.view.Browse(session.session, &req)
	resp.ResponseHeader.Timestamp = currentDateTime()
	resp.ResponseHeader.RequestHandle = req.RequestHeader.RequestHandle

	return resp.Encode()
}

func (s *Server) handleBrowseNext(session *serverSession, d *Decoder) ([]byte, error) {
	var req BrowseNextRequest
	if err := req.Decode(d.Rest()); err != nil {
		return nil, err
	}

	resp := s.view.BrowseNext(session.session, &req)
	resp.ResponseHeader.Timestamp = currentDateTime()
	resp.ResponseHeader.RequestHandle = req.RequestHeader.RequestHandle

	return resp.Encode()
}

func (s *Server) handleTranslateBrowsePaths(session *serverSession, d *Decoder) ([]byte, error) {
	var req TranslateBrowsePathsRequest
	if err := req.Decode(d.Rest()); err != nil {
		return nil, err
	}

	resp := s.view.TranslateBrowsePaths(session.session, &req)
	resp.ResponseHeader.Timestamp = currentDateTime()
	resp.ResponseHeader.RequestHandle = req.RequestHeader.RequestHandle

	return resp.Encode()
}

func (s *Server) handleRegisterNodes(session *serverSession, d *Decoder) ([]byte, error) {
	var req RegisterNodesRequest
	if err := req.Decode(d.Rest()); err != nil {
		return nil, err
	}

	resp := s.view.RegisterNodes(session.session, &req)
	resp.ResponseHeader.Timestamp = currentDateTime()
	resp.ResponseHeader.RequestHandle = req.RequestHeader.RequestHandle

	return resp.Encode()
}

func (s *Server) handleUnregisterNodes(session *serverSession, d *Decoder) ([]byte, error) {
	var req UnregisterNodesRequest
	if err := req.Decode(d.Rest()); err != nil {
		return nil, err
	}

	resp := s.view.UnregisterNodes(session.session, &req)
	resp.ResponseHeader.Timestamp = currentDateTime()
	resp.ResponseHeader.RequestHandle = req.RequestHeader.RequestHandle

	return resp.Encode()
}

func (s *Server) buildErrorResponse(errorCode uint32, reason string) []byte {
	errMsg := ErrorMessage{
		Error:  errorCode,
		Reason: reason,
	}
	errData := errMsg.Encode()

	header := MessageHeader{
		ChunkType:   ChunkTypeFinal,
		MessageSize: uint32(8 + len(errData)),
	}
	copy(header.MessageType[:], MessageTypeError)

	return append(header.Encode(), errData...)
}

// currentDateTime returns the current time as an OPC UA DateTime (100 ns
// intervals since 1601-01-01).
func currentDateTime() int64 {
	const epochDiff = 116444736000000000
	return time.Now().UnixNano()/100 + epochDiff
}
