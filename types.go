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

// Package opcua implements the view services of an OPC UA server: Browse,
// BrowseNext, TranslateBrowsePathsToNodeIds, RegisterNodes and
// UnregisterNodes, together with the address-space node store, sessions with
// continuation points, the binary protocol layer and a matching client.
package opcua

import (
	"bytes"
	"fmt"
	"math"
	"time"
)

// NodeIDType represents the type of a NodeID.
type NodeIDType uint8

// NodeID types.
const (
	NodeIDTypeNumeric NodeIDType = iota
	NodeIDTypeString
	NodeIDTypeGUID
	NodeIDTypeOpaque
)

// NodeID represents an OPC UA NodeID.
type NodeID struct {
	Type      NodeIDType
	Namespace uint16
	Numeric   uint32
	String    string
	GUID      [16]byte
	Opaque    []byte
}

// NewNumericNodeID creates a new numeric NodeID.
func NewNumericNodeID(namespace uint16, id uint32) NodeID {
	return NodeID{
		Type:      NodeIDTypeNumeric,
		Namespace: namespace,
		Numeric:   id,
	}
}

// NewStringNodeID creates a new string NodeID.
func NewStringNodeID(namespace uint16, id string) NodeID {
	return NodeID{
		Type:      NodeIDTypeString,
		Namespace: namespace,
		String:    id,
	}
}

// IsNull reports whether the NodeID is the null NodeID (ns=0, numeric 0).
func (n NodeID) IsNull() bool {
	switch n.Type {
	case NodeIDTypeNumeric:
		return n.Namespace == 0 && n.Numeric == 0
	case NodeIDTypeString:
		return n.Namespace == 0 && n.String == ""
	case NodeIDTypeGUID:
		return n.Namespace == 0 && n.GUID == [16]byte{}
	case NodeIDTypeOpaque:
		return n.Namespace == 0 && len(n.Opaque) == 0
	}
	return false
}

// Equal reports whether two NodeIDs identify the same node.
func (n NodeID) Equal(other NodeID) bool {
	if n.Type != other.Type || n.Namespace != other.Namespace {
		return false
	}
	switch n.Type {
	case NodeIDTypeNumeric:
		return n.Numeric == other.Numeric
	case NodeIDTypeString:
		return n.String == other.String
	case NodeIDTypeGUID:
		return n.GUID == other.GUID
	case NodeIDTypeOpaque:
		return bytes.Equal(n.Opaque, other.Opaque)
	}
	return false
}

// Copy returns a NodeID that shares no memory with the receiver.
func (n NodeID) Copy() NodeID {
	c := n
	if n.Type == NodeIDTypeOpaque && n.Opaque != nil {
		c.Opaque = append([]byte(nil), n.Opaque...)
	}
	return c
}

// Text returns the "ns=X;i=Y" textual form of the NodeID. It doubles as the
// canonical map key for node lookups.
func (n NodeID) Text() string {
	var id string
	switch n.Type {
	case NodeIDTypeNumeric:
		id = fmt.Sprintf("i=%d", n.Numeric)
	case NodeIDTypeString:
		id = fmt.Sprintf("s=%s", n.String)
	case NodeIDTypeGUID:
		id = fmt.Sprintf("g=%x", n.GUID)
	case NodeIDTypeOpaque:
		id = fmt.Sprintf("b=%x", n.Opaque)
	}
	if n.Namespace == 0 {
		return id
	}
	return fmt.Sprintf("ns=%d;%s", n.Namespace, id)
}

// ExpandedNodeID extends a NodeID with an optional namespace URI and a server
// index. A ServerIndex of zero means the node is local.
type ExpandedNodeID struct {
	NodeID       NodeID
	NamespaceURI string
	ServerIndex  uint32
}

// IsLocal reports whether the target lives on this server.
func (e ExpandedNodeID) IsLocal() bool {
	return e.ServerIndex == 0
}

// ServiceID represents an OPC UA service identifier.
type ServiceID uint32

// OPC UA Service IDs.
const (
	ServiceGetEndpoints                  ServiceID = 428
	ServiceCreateSession                 ServiceID = 461
	ServiceActivateSession               ServiceID = 467
	ServiceCloseSession                  ServiceID = 473
	ServiceBrowse                        ServiceID = 527
	ServiceBrowseNext                    ServiceID = 533
	ServiceTranslateBrowsePathsToNodeIds ServiceID = 554
	ServiceRegisterNodes                 ServiceID = 560
	ServiceUnregisterNodes               ServiceID = 566
)

// String returns the string representation of a ServiceID.
func (s ServiceID) String() string {
	switch s {
	case ServiceGetEndpoints:
		return "GetEndpoints"
	case ServiceCreateSession:
		return "CreateSession"
	case ServiceActivateSession:
		return "ActivateSession"
	case ServiceCloseSession:
		return "CloseSession"
	case ServiceBrowse:
		return "Browse"
	case ServiceBrowseNext:
		return "BrowseNext"
	case ServiceTranslateBrowsePathsToNodeIds:
		return "TranslateBrowsePathsToNodeIds"
	case ServiceRegisterNodes:
		return "RegisterNodes"
	case ServiceUnregisterNodes:
		return "UnregisterNodes"
	default:
		return "Unknown"
	}
}

// NodeClass represents the class of an OPC UA node. The values form a
// bitmask so they can double as a node-class filter.
type NodeClass uint32

// OPC UA Node Classes.
const (
	NodeClassUnspecified   NodeClass = 0
	NodeClassObject        NodeClass = 1
	NodeClassVariable      NodeClass = 2
	NodeClassMethod        NodeClass = 4
	NodeClassObjectType    NodeClass = 8
	NodeClassVariableType  NodeClass = 16
	NodeClassReferenceType NodeClass = 32
	NodeClassDataType      NodeClass = 64
	NodeClassView          NodeClass = 128
)

// String returns the string representation of a NodeClass.
func (n NodeClass) String() string {
	switch n {
	case NodeClassUnspecified:
		return "Unspecified"
	case NodeClassObject:
		return "Object"
	case NodeClassVariable:
		return "Variable"
	case NodeClassMethod:
		return "Method"
	case NodeClassObjectType:
		return "ObjectType"
	case NodeClassVariableType:
		return "VariableType"
	case NodeClassReferenceType:
		return "ReferenceType"
	case NodeClassDataType:
		return "DataType"
	case NodeClassView:
		return "View"
	default:
		return "Unknown"
	}
}

// BrowseDirection represents the direction to browse in the address space.
type BrowseDirection uint32

// Browse directions.
const (
	BrowseDirectionForward BrowseDirection = 0
	BrowseDirectionInverse BrowseDirection = 1
	BrowseDirectionBoth    BrowseDirection = 2
)

// BrowseResultMask bits select which fields of a ReferenceDescription are
// populated. The target NodeID is always populated.
const (
	BrowseResultMaskReferenceTypeID uint32 = 0x01
	BrowseResultMaskIsForward       uint32 = 0x02
	BrowseResultMaskNodeClass       uint32 = 0x04
	BrowseResultMaskBrowseName      uint32 = 0x08
	BrowseResultMaskDisplayName     uint32 = 0x10
	BrowseResultMaskTypeDefinition  uint32 = 0x20
	BrowseResultMaskAll             uint32 = 0x3F
)

// Well-known namespace-zero node identifiers used by the view services.
const (
	IDRootFolder                uint32 = 84
	IDObjectsFolder             uint32 = 85
	IDTypesFolder               uint32 = 86
	IDViewsFolder               uint32 = 87
	IDReferenceTypesFolder      uint32 = 91
	IDObjectTypesFolder         uint32 = 88
	IDReferences                uint32 = 31
	IDNonHierarchicalReferences uint32 = 32
	IDHierarchicalReferences    uint32 = 33
	IDHasChild                  uint32 = 34
	IDOrganizes                 uint32 = 35
	IDAggregates                uint32 = 44
	IDHasSubtype                uint32 = 45
	IDHasProperty               uint32 = 46
	IDHasComponent              uint32 = 47
	IDHasTypeDefinition         uint32 = 40
	IDBaseObjectType            uint32 = 58
	IDFolderType                uint32 = 61
	IDServer                    uint32 = 2253
)

// MessageSecurityMode represents the security mode for messages.
type MessageSecurityMode uint32

// Message security modes.
const (
	MessageSecurityModeInvalid        MessageSecurityMode = 0
	MessageSecurityModeNone           MessageSecurityMode = 1
	MessageSecurityModeSign           MessageSecurityMode = 2
	MessageSecurityModeSignAndEncrypt MessageSecurityMode = 3
)

// String returns the string representation of a MessageSecurityMode.
func (m MessageSecurityMode) String() string {
	switch m {
	case MessageSecurityModeNone:
		return "None"
	case MessageSecurityModeSign:
		return "Sign"
	case MessageSecurityModeSignAndEncrypt:
		return "SignAndEncrypt"
	default:
		return "Invalid"
	}
}

// SecurityPolicy represents an OPC UA security policy.
type SecurityPolicy string

// Security policies.
const (
	SecurityPolicyNone           SecurityPolicy = "http://opcfoundation.org/UA/SecurityPolicy#None"
	SecurityPolicyBasic256Sha256 SecurityPolicy = "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
)

// Protocol constants.
const (
	// DefaultTimeout is the default timeout for OPC UA operations.
	DefaultTimeout = 5 * time.Second

	// DefaultPort is the default OPC UA TCP port.
	DefaultPort = 4840

	// ProtocolVersion is the OPC UA binary protocol version.
	ProtocolVersion uint32 = 0

	// MaxChunkCount is the maximum number of chunks (0 = no limit).
	MaxChunkCount uint32 = 0

	// DefaultReceiveBufferSize is the default receive buffer size.
	DefaultReceiveBufferSize uint32 = 65535

	// DefaultSendBufferSize is the default send buffer size.
	DefaultSendBufferSize uint32 = 65535

	// DefaultMaxMessageSize is the default maximum message size.
	DefaultMaxMessageSize uint32 = 16777216
)

// StatusCode represents an OPC UA StatusCode.
type StatusCode uint32

// QualifiedName represents an OPC UA QualifiedName.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// IsNull reports whether the qualified name is null (no name, namespace 0).
func (q QualifiedName) IsNull() bool {
	return q.NamespaceIndex == 0 && q.Name == ""
}

// Equal reports whether two qualified names match on namespace and name.
func (q QualifiedName) Equal(other QualifiedName) bool {
	return q.NamespaceIndex == other.NamespaceIndex && q.Name == other.Name
}

// LocalizedText represents an OPC UA LocalizedText.
type LocalizedText struct {
	Locale string
	Text   string
}

// ViewDescription identifies a server-defined view. A null ViewID addresses
// the whole address space.
type ViewDescription struct {
	ViewID      NodeID
	Timestamp   int64
	ViewVersion uint32
}

// BrowseDescription describes what to browse from a node.
type BrowseDescription struct {
	NodeID          NodeID
	BrowseDirection BrowseDirection
	ReferenceTypeID NodeID
	IncludeSubtypes bool
	NodeClassMask   uint32
	ResultMask      uint32
}

// Copy returns a BrowseDescription that shares no memory with the receiver.
func (b BrowseDescription) Copy() BrowseDescription {
	c := b
	c.NodeID = b.NodeID.Copy()
	c.ReferenceTypeID = b.ReferenceTypeID.Copy()
	return c
}

// ReferenceDescription describes a reference returned from a browse. The
// NodeID field is always populated; the remaining fields are populated only
// when the corresponding BrowseResultMask bit was set.
type ReferenceDescription struct {
	ReferenceTypeID NodeID
	IsForward       bool
	NodeID          ExpandedNodeID
	BrowseName      QualifiedName
	DisplayName     LocalizedText
	NodeClass       NodeClass
	TypeDefinition  ExpandedNodeID
}

// BrowseResult contains the result of a browse operation. A nil References
// slice means the field is absent; a non-nil empty slice is the distinguished
// empty array of a successful browse with no matching references.
type BrowseResult struct {
	StatusCode        StatusCode
	ContinuationPoint []byte
	References        []ReferenceDescription
}

// BrowsePath describes a browse path.
type BrowsePath struct {
	StartingNode NodeID
	RelativePath RelativePath
}

// RelativePath is a sequence of browse names.
type RelativePath struct {
	Elements []RelativePathElement
}

// RelativePathElement is a single element of a relative path.
type RelativePathElement struct {
	ReferenceTypeID NodeID
	IsInverse       bool
	IncludeSubtypes bool
	TargetName      QualifiedName
}

// RemainingPathIndexMax marks a browse-path target that was fully resolved on
// this server. Targets on remote servers carry the depth at which the walk
// crossed the server boundary instead.
const RemainingPathIndexMax uint32 = math.MaxUint32

// BrowsePathResult contains the result of a TranslateBrowsePathsToNodeIds
// operation.
type BrowsePathResult struct {
	StatusCode StatusCode
	Targets    []BrowsePathTarget
}

// BrowsePathTarget contains a target node of a browse path.
type BrowsePathTarget struct {
	TargetID           ExpandedNodeID
	RemainingPathIndex uint32
}

// Request represents an OPC UA request that can be encoded.
type Request interface {
	ServiceID() ServiceID
	Encode() ([]byte, error)
}

// Response represents an OPC UA response that can be decoded.
type Response interface {
	ServiceID() ServiceID
	Decode(data []byte) error
}

// ApplicationDescription describes an OPC UA application.
type ApplicationDescription struct {
	ApplicationURI      string
	ProductURI          string
	ApplicationName     LocalizedText
	ApplicationType     ApplicationType
	GatewayServerURI    string
	DiscoveryProfileURI string
	DiscoveryURLs       []string
}

// ApplicationType represents the type of an OPC UA application.
type ApplicationType uint32

// Application types.
const (
	ApplicationTypeServer          ApplicationType = 0
	ApplicationTypeClient          ApplicationType = 1
	ApplicationTypeClientAndServer ApplicationType = 2
	ApplicationTypeDiscoveryServer ApplicationType = 3
)

// EndpointDescription describes an OPC UA endpoint.
type EndpointDescription struct {
	EndpointURL         string
	Server              ApplicationDescription
	ServerCertificate   []byte
	SecurityMode        MessageSecurityMode
	SecurityPolicyURI   string
	UserIdentityTokens  []UserTokenPolicy
	TransportProfileURI string
	SecurityLevel       uint8
}

// UserTokenPolicy describes a user identity token policy.
type UserTokenPolicy struct {
	PolicyID          string
	TokenType         UserTokenType
	IssuedTokenType   string
	IssuerEndpointURL string
	SecurityPolicyURI string
}

// UserTokenType represents the type of user identity token.
type UserTokenType uint32

// User token types.
const (
	UserTokenTypeAnonymous   UserTokenType = 0
	UserTokenTypeUserName    UserTokenType = 1
	UserTokenTypeCertificate UserTokenType = 2
	UserTokenTypeIssuedToken UserTokenType = 3
)

// DiagnosticInfo contains diagnostic information.
type DiagnosticInfo struct {
	SymbolicID          int32
	NamespaceURI        int32
	Locale              int32
	LocalizedText       int32
	AdditionalInfo      string
	InnerStatusCode     StatusCode
	InnerDiagnosticInfo *DiagnosticInfo
}

// ConnectionState represents the state of a client connection.
type ConnectionState int

// Connection states.
const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateSecureChannelOpen
	StateSessionActive
)

// String returns the string representation of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSecureChannelOpen:
		return "secure_channel_open"
	case StateSessionActive:
		return "session_active"
	default:
		return "unknown"
	}
}
