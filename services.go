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

// RequestHeader contains the header for all OPC UA requests.
type RequestHeader struct {
	AuthenticationToken NodeID
	Timestamp           int64
	RequestHandle       uint32
	ReturnDiagnostics   uint32
	AuditEntryID        string
	TimeoutHint         uint32
	AdditionalHeader    interface{}
}

// ResponseHeader contains the header for all OPC UA responses.
type ResponseHeader struct {
	Timestamp          int64
	RequestHandle      uint32
	ServiceResult      StatusCode
	ServiceDiagnostics DiagnosticInfo
	StringTable        []string
	AdditionalHeader   interface{}
}

func encodeRequestHeader(e *Encoder, h *RequestHeader) {
	e.WriteNodeID(h.AuthenticationToken)
	e.WriteInt64(h.Timestamp)
	e.WriteUInt32(h.RequestHandle)
	e.WriteUInt32(h.ReturnDiagnostics)
	e.WriteString(h.AuditEntryID)
	e.WriteUInt32(h.TimeoutHint)
	// AdditionalHeader (ExtensionObject) - null
	e.WriteNodeID(NodeID{}) // TypeId = null NodeID
	e.WriteByte(0x00)       // Encoding = no body
}

func decodeRequestHeader(d *Decoder) (RequestHeader, error) {
	var h RequestHeader
	var err error

	h.AuthenticationToken, err = d.ReadNodeID()
	if err != nil {
		return h, err
	}
	h.Timestamp, err = d.ReadInt64()
	if err != nil {
		return h, err
	}
	h.RequestHandle, err = d.ReadUInt32()
	if err != nil {
		return h, err
	}
	h.ReturnDiagnostics, err = d.ReadUInt32()
	if err != nil {
		return h, err
	}
	h.AuditEntryID, err = d.ReadString()
	if err != nil {
		return h, err
	}
	h.TimeoutHint, err = d.ReadUInt32()
	if err != nil {
		return h, err
	}

	// AdditionalHeader (ExtensionObject) - skip
	if _, err = d.ReadNodeID(); err != nil {
		return h, err
	}
	if _, err = d.ReadByte(); err != nil {
		return h, err
	}

	return h, nil
}

func encodeResponseHeader(e *Encoder, h *ResponseHeader) {
	e.WriteInt64(h.Timestamp)
	e.WriteUInt32(h.RequestHandle)
	e.WriteStatusCode(h.ServiceResult)
	e.WriteByte(0)  // ServiceDiagnostics (null)
	e.WriteInt32(0) // StringTable (empty)
	// AdditionalHeader (ExtensionObject) - null
	e.WriteNodeID(NodeID{})
	e.WriteByte(0x00)
}

func decodeResponseHeader(d *Decoder) (ResponseHeader, error) {
	var h ResponseHeader
	var err error

	h.Timestamp, err = d.ReadInt64()
	if err != nil {
		return h, err
	}
	h.RequestHandle, err = d.ReadUInt32()
	if err != nil {
		return h, err
	}
	h.ServiceResult, err = d.ReadStatusCode()
	if err != nil {
		return h, err
	}

	// ServiceDiagnostics (DiagnosticInfo) - simplified
	encodingMask, err := d.ReadByte()
	if err != nil {
		return h, err
	}
	if encodingMask != 0 {
		// Skip diagnostic info fields
		if encodingMask&0x01 != 0 {
			_, _ = d.ReadInt32() // SymbolicId
		}
		if encodingMask&0x02 != 0 {
			_, _ = d.ReadInt32() // NamespaceURI
		}
		if encodingMask&0x04 != 0 {
			_, _ = d.ReadInt32() // Locale
		}
		if encodingMask&0x08 != 0 {
			_, _ = d.ReadInt32() // LocalizedText
		}
		if encodingMask&0x10 != 0 {
			_, _ = d.ReadString() // AdditionalInfo
		}
		if encodingMask&0x20 != 0 {
			_, _ = d.ReadStatusCode() // InnerStatusCode
		}
	}

	// StringTable
	stringCount, err := d.ReadInt32()
	if err != nil {
		return h, err
	}
	if stringCount > 0 {
		h.StringTable = make([]string, stringCount)
		for i := int32(0); i < stringCount; i++ {
			h.StringTable[i], err = d.ReadString()
			if err != nil {
				return h, err
			}
		}
	}

	// AdditionalHeader (ExtensionObject) - skip
	_, _ = d.ReadNodeID() // TypeId
	_, _ = d.ReadByte()   // Encoding

	return h, nil
}

// BrowseRequest represents an OPC UA Browse service request.
type BrowseRequest struct {
	RequestHeader                 RequestHeader
	View                          ViewDescription
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse                 []BrowseDescription
}

// ServiceID returns the service identifier.
func (r *BrowseRequest) ServiceID() ServiceID {
	return ServiceBrowse
}

// Encode encodes the request.
func (r *BrowseRequest) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeRequestHeader(e, &r.RequestHeader)

	// View
	e.WriteNodeID(r.View.ViewID)
	e.WriteInt64(r.View.Timestamp)
	e.WriteUInt32(r.View.ViewVersion)

	e.WriteUInt32(r.RequestedMaxReferencesPerNode)

	e.WriteInt32(int32(len(r.NodesToBrowse)))
	for i := range r.NodesToBrowse {
		encodeBrowseDescription(e, &r.NodesToBrowse[i])
	}

	return e.Bytes(), nil
}

// Decode decodes the request.
func (r *BrowseRequest) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.RequestHeader, err = decodeRequestHeader(d)
	if err != nil {
		return err
	}

	// View
	r.View.ViewID, err = d.ReadNodeID()
	if err != nil {
		return err
	}
	r.View.Timestamp, err = d.ReadInt64()
	if err != nil {
		return err
	}
	r.View.ViewVersion, err = d.ReadUInt32()
	if err != nil {
		return err
	}

	r.RequestedMaxReferencesPerNode, err = d.ReadUInt32()
	if err != nil {
		return err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.NodesToBrowse = make([]BrowseDescription, count)
		for i := int32(0); i < count; i++ {
			r.NodesToBrowse[i], err = decodeBrowseDescription(d)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// BrowseResponse represents an OPC UA Browse service response.
type BrowseResponse struct {
	ResponseHeader  ResponseHeader
	Results         []BrowseResult
	DiagnosticInfos []DiagnosticInfo
}

// ServiceID returns the service identifier.
func (r *BrowseResponse) ServiceID() ServiceID {
	return ServiceBrowse
}

// Encode encodes the response.
func (r *BrowseResponse) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeResponseHeader(e, &r.ResponseHeader)

	if r.Results == nil {
		e.WriteInt32(-1)
	} else {
		e.WriteInt32(int32(len(r.Results)))
		for i := range r.Results {
			encodeBrowseResult(e, &r.Results[i])
		}
	}

	// DiagnosticInfos
	e.WriteInt32(0)

	return e.Bytes(), nil
}

// Decode decodes the response.
func (r *BrowseResponse) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.ResponseHeader, err = decodeResponseHeader(d)
	if err != nil {
		return err
	}

	if r.ResponseHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceBrowse, r.ResponseHeader.ServiceResult, "")
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.Results = make([]BrowseResult, count)
		for i := int32(0); i < count; i++ {
			r.Results[i], err = decodeBrowseResult(d)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// BrowseNextRequest represents an OPC UA BrowseNext service request.
type BrowseNextRequest struct {
	RequestHeader             RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints        [][]byte
}

// ServiceID returns the service identifier.
func (r *BrowseNextRequest) ServiceID() ServiceID {
	return ServiceBrowseNext
}

// Encode encodes the request.
func (r *BrowseNextRequest) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeRequestHeader(e, &r.RequestHeader)

	e.WriteBoolean(r.ReleaseContinuationPoints)

	e.WriteInt32(int32(len(r.ContinuationPoints)))
	for _, cp := range r.ContinuationPoints {
		e.WriteByteString(cp)
	}

	return e.Bytes(), nil
}

// Decode decodes the request.
func (r *BrowseNextRequest) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.RequestHeader, err = decodeRequestHeader(d)
	if err != nil {
		return err
	}

	r.ReleaseContinuationPoints, err = d.ReadBoolean()
	if err != nil {
		return err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.ContinuationPoints = make([][]byte, count)
		for i := int32(0); i < count; i++ {
			r.ContinuationPoints[i], err = d.ReadByteString()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// BrowseNextResponse represents an OPC UA BrowseNext service response.
type BrowseNextResponse struct {
	ResponseHeader  ResponseHeader
	Results         []BrowseResult
	DiagnosticInfos []DiagnosticInfo
}

// ServiceID returns the service identifier.
func (r *BrowseNextResponse) ServiceID() ServiceID {
	return ServiceBrowseNext
}

// Encode encodes the response.
func (r *BrowseNextResponse) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeResponseHeader(e, &r.ResponseHeader)

	if r.Results == nil {
		e.WriteInt32(-1)
	} else {
		e.WriteInt32(int32(len(r.Results)))
		for i := range r.Results {
			encodeBrowseResult(e, &r.Results[i])
		}
	}

	// DiagnosticInfos
	e.WriteInt32(0)

	return e.Bytes(), nil
}

// Decode decodes the response.
func (r *BrowseNextResponse) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.ResponseHeader, err = decodeResponseHeader(d)
	if err != nil {
		return err
	}

	if r.ResponseHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceBrowseNext, r.ResponseHeader.ServiceResult, "")
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.Results = make([]BrowseResult, count)
		for i := int32(0); i < count; i++ {
			r.Results[i], err = decodeBrowseResult(d)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// TranslateBrowsePathsRequest represents an OPC UA
// TranslateBrowsePathsToNodeIds service request.
type TranslateBrowsePathsRequest struct {
	RequestHeader RequestHeader
	BrowsePaths   []BrowsePath
}

// ServiceID returns the service identifier.
func (r *TranslateBrowsePathsRequest) ServiceID() ServiceID {
	return ServiceTranslateBrowsePathsToNodeIds
}

// Encode encodes the request.
func (r *TranslateBrowsePathsRequest) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeRequestHeader(e, &r.RequestHeader)

	e.WriteInt32(int32(len(r.BrowsePaths)))
	for i := range r.BrowsePaths {
		encodeBrowsePath(e, &r.BrowsePaths[i])
	}

	return e.Bytes(), nil
}

// Decode decodes the request.
func (r *TranslateBrowsePathsRequest) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.RequestHeader, err = decodeRequestHeader(d)
	if err != nil {
		return err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.BrowsePaths = make([]BrowsePath, count)
		for i := int32(0); i < count; i++ {
			r.BrowsePaths[i], err = decodeBrowsePath(d)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// TranslateBrowsePathsResponse represents an OPC UA
// TranslateBrowsePathsToNodeIds service response.
type TranslateBrowsePathsResponse struct {
	ResponseHeader  ResponseHeader
	Results         []BrowsePathResult
	DiagnosticInfos []DiagnosticInfo
}

// ServiceID returns the service identifier.
func (r *TranslateBrowsePathsResponse) ServiceID() ServiceID {
	return ServiceTranslateBrowsePathsToNodeIds
}

// Encode encodes the response.
func (r *TranslateBrowsePathsResponse) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeResponseHeader(e, &r.ResponseHeader)

	if r.Results == nil {
		e.WriteInt32(-1)
	} else {
		e.WriteInt32(int32(len(r.Results)))
		for i := range r.Results {
			encodeBrowsePathResult(e, &r.Results[i])
		}
	}

	// DiagnosticInfos
	e.WriteInt32(0)

	return e.Bytes(), nil
}

// Decode decodes the response.
func (r *TranslateBrowsePathsResponse) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.ResponseHeader, err = decodeResponseHeader(d)
	if err != nil {
		return err
	}

	if r.ResponseHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceTranslateBrowsePathsToNodeIds, r.ResponseHeader.ServiceResult, "")
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.Results = make([]BrowsePathResult, count)
		for i := int32(0); i < count; i++ {
			r.Results[i], err = decodeBrowsePathResult(d)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// RegisterNodesRequest represents an OPC UA RegisterNodes service request.
type RegisterNodesRequest struct {
	RequestHeader   RequestHeader
	NodesToRegister []NodeID
}

// ServiceID returns the service identifier.
func (r *RegisterNodesRequest) ServiceID() ServiceID {
	return ServiceRegisterNodes
}

// Encode encodes the request.
func (r *RegisterNodesRequest) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeRequestHeader(e, &r.RequestHeader)

	e.WriteInt32(int32(len(r.NodesToRegister)))
	for _, id := range r.NodesToRegister {
		e.WriteNodeID(id)
	}

	return e.Bytes(), nil
}

// Decode decodes the request.
func (r *RegisterNodesRequest) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.RequestHeader, err = decodeRequestHeader(d)
	if err != nil {
		return err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.NodesToRegister = make([]NodeID, count)
		for i := int32(0); i < count; i++ {
			r.NodesToRegister[i], err = d.ReadNodeID()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// RegisterNodesResponse represents an OPC UA RegisterNodes service response.
type RegisterNodesResponse struct {
	ResponseHeader    ResponseHeader
	RegisteredNodeIDs []NodeID
}

// ServiceID returns the service identifier.
func (r *RegisterNodesResponse) ServiceID() ServiceID {
	return ServiceRegisterNodes
}

// Encode encodes the response.
func (r *RegisterNodesResponse) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeResponseHeader(e, &r.ResponseHeader)

	if r.RegisteredNodeIDs == nil {
		e.WriteInt32(-1)
	} else {
		e.WriteInt32(int32(len(r.RegisteredNodeIDs)))
		for _, id := range r.RegisteredNodeIDs {
			e.WriteNodeID(id)
		}
	}

	return e.Bytes(), nil
}

// Decode decodes the response.
func (r *RegisterNodesResponse) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.ResponseHeader, err = decodeResponseHeader(d)
	if err != nil {
		return err
	}

	if r.ResponseHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceRegisterNodes, r.ResponseHeader.ServiceResult, "")
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.RegisteredNodeIDs = make([]NodeID, count)
		for i := int32(0); i < count; i++ {
			r.RegisteredNodeIDs[i], err = d.ReadNodeID()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// UnregisterNodesRequest represents an OPC UA UnregisterNodes service
// request.
type UnregisterNodesRequest struct {
	RequestHeader     RequestHeader
	NodesToUnregister []NodeID
}

// ServiceID returns the service identifier.
func (r *UnregisterNodesRequest) ServiceID() ServiceID {
	return ServiceUnregisterNodes
}

// Encode encodes the request.
func (r *UnregisterNodesRequest) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeRequestHeader(e, &r.RequestHeader)

	e.WriteInt32(int32(len(r.NodesToUnregister)))
	for _, id := range r.NodesToUnregister {
		e.WriteNodeID(id)
	}

	return e.Bytes(), nil
}

// Decode decodes the request.
func (r *UnregisterNodesRequest) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.RequestHeader, err = decodeRequestHeader(d)
	if err != nil {
		return err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.NodesToUnregister = make([]NodeID, count)
		for i := int32(0); i < count; i++ {
			r.NodesToUnregister[i], err = d.ReadNodeID()
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// UnregisterNodesResponse represents an OPC UA UnregisterNodes service
// response.
type UnregisterNodesResponse struct {
	ResponseHeader ResponseHeader
}

// ServiceID returns the service identifier.
func (r *UnregisterNodesResponse) ServiceID() ServiceID {
	return ServiceUnregisterNodes
}

// Encode encodes the response.
func (r *UnregisterNodesResponse) Encode() ([]byte, error) {
	e := NewEncoder()
	encodeResponseHeader(e, &r.ResponseHeader)
	return e.Bytes(), nil
}

// Decode decodes the response.
func (r *UnregisterNodesResponse) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.ResponseHeader, err = decodeResponseHeader(d)
	if err != nil {
		return err
	}

	if r.ResponseHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceUnregisterNodes, r.ResponseHeader.ServiceResult, "")
	}

	return nil
}

// GetEndpointsRequest represents an OPC UA GetEndpoints service request.
type GetEndpointsRequest struct {
	RequestHeader RequestHeader
	EndpointURL   string
	LocaleIDs     []string
	ProfileURIs   []string
}

// ServiceID returns the service identifier.
func (r *GetEndpointsRequest) ServiceID() ServiceID {
	return ServiceGetEndpoints
}

// Encode encodes the request.
func (r *GetEndpointsRequest) Encode() ([]byte, error) {
	e := NewEncoder()

	encodeRequestHeader(e, &r.RequestHeader)

	e.WriteString(r.EndpointURL)

	e.WriteInt32(int32(len(r.LocaleIDs)))
	for _, l := range r.LocaleIDs {
		e.WriteString(l)
	}
	e.WriteInt32(int32(len(r.ProfileURIs)))
	for _, p := range r.ProfileURIs {
		e.WriteString(p)
	}

	return e.Bytes(), nil
}

// GetEndpointsResponse represents an OPC UA GetEndpoints service response.
type GetEndpointsResponse struct {
	ResponseHeader ResponseHeader
	Endpoints      []EndpointDescription
}

// ServiceID returns the service identifier.
func (r *GetEndpointsResponse) ServiceID() ServiceID {
	return ServiceGetEndpoints
}

// Decode decodes the response.
func (r *GetEndpointsResponse) Decode(data []byte) error {
	d := NewDecoder(data)

	var err error
	r.ResponseHeader, err = decodeResponseHeader(d)
	if err != nil {
		return err
	}

	if r.ResponseHeader.ServiceResult.IsBad() {
		return NewOPCUAError(ServiceGetEndpoints, r.ResponseHeader.ServiceResult, "")
	}

	count, err := d.ReadInt32()
	if err != nil {
		return err
	}
	if count > 0 {
		r.Endpoints = make([]EndpointDescription, count)
		for i := int32(0); i < count; i++ {
			r.Endpoints[i], err = decodeEndpointDescription(d)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func encodeBrowseDescription(e *Encoder, b *BrowseDescription) {
	e.WriteNodeID(b.NodeID)
	e.WriteUInt32(uint32(b.BrowseDirection))
	e.WriteNodeID(b.ReferenceTypeID)
	e.WriteBoolean(b.IncludeSubtypes)
	e.WriteUInt32(b.NodeClassMask)
	e.WriteUInt32(b.ResultMask)
}

func decodeBrowseDescription(d *Decoder) (BrowseDescription, error) {
	var b BrowseDescription
	var err error

	b.NodeID, err = d.ReadNodeID()
	if err != nil {
		return b, err
	}
	direction, err := d.ReadUInt32()
	if err != nil {
		return b, err
	}
	b.BrowseDirection = BrowseDirection(direction)
	b.ReferenceTypeID, err = d.ReadNodeID()
	if err != nil {
		return b, err
	}
	b.IncludeSubtypes, err = d.ReadBoolean()
	if err != nil {
		return b, err
	}
	b.NodeClassMask, err = d.ReadUInt32()
	if err != nil {
		return b, err
	}
	b.ResultMask, err = d.ReadUInt32()
	if err != nil {
		return b, err
	}

	return b, nil
}

func encodeBrowseResult(e *Encoder, br *BrowseResult) {
	e.WriteStatusCode(br.StatusCode)
	e.WriteByteString(br.ContinuationPoint)

	// A nil References slice is the null array; a non-nil empty slice is the
	// distinguished empty array of a successful browse.
	if br.References == nil {
		e.WriteInt32(-1)
	} else {
		e.WriteInt32(int32(len(br.References)))
		for i := range br.References {
			encodeReferenceDescription(e, &br.References[i])
		}
	}
}

func decodeBrowseResult(d *Decoder) (BrowseResult, error) {
	var br BrowseResult
	var err error

	br.StatusCode, err = d.ReadStatusCode()
	if err != nil {
		return br, err
	}

	br.ContinuationPoint, err = d.ReadByteString()
	if err != nil {
		return br, err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return br, err
	}
	if count >= 0 {
		br.References = make([]ReferenceDescription, count)
		for i := int32(0); i < count; i++ {
			br.References[i], err = decodeReferenceDescription(d)
			if err != nil {
				return br, err
			}
		}
	}

	return br, nil
}

func encodeReferenceDescription(e *Encoder, rd *ReferenceDescription) {
	e.WriteNodeID(rd.ReferenceTypeID)
	e.WriteBoolean(rd.IsForward)
	e.WriteExpandedNodeID(rd.NodeID)
	e.WriteQualifiedName(rd.BrowseName)
	e.WriteLocalizedText(rd.DisplayName)
	e.WriteUInt32(uint32(rd.NodeClass))
	e.WriteExpandedNodeID(rd.TypeDefinition)
}

func decodeReferenceDescription(d *Decoder) (ReferenceDescription, error) {
	var rd ReferenceDescription
	var err error

	rd.ReferenceTypeID, err = d.ReadNodeID()
	if err != nil {
		return rd, err
	}
	rd.IsForward, err = d.ReadBoolean()
	if err != nil {
		return rd, err
	}
	rd.NodeID, err = d.ReadExpandedNodeID()
	if err != nil {
		return rd, err
	}
	rd.BrowseName, err = d.ReadQualifiedName()
	if err != nil {
		return rd, err
	}
	rd.DisplayName, err = d.ReadLocalizedText()
	if err != nil {
		return rd, err
	}
	nodeClass, err := d.ReadUInt32()
	if err != nil {
		return rd, err
	}
	rd.NodeClass = NodeClass(nodeClass)
	rd.TypeDefinition, err = d.ReadExpandedNodeID()
	if err != nil {
		return rd, err
	}

	return rd, nil
}

func encodeBrowsePath(e *Encoder, p *BrowsePath) {
	e.WriteNodeID(p.StartingNode)
	e.WriteInt32(int32(len(p.RelativePath.Elements)))
	for i := range p.RelativePath.Elements {
		elem := &p.RelativePath.Elements[i]
		e.WriteNodeID(elem.ReferenceTypeID)
		e.WriteBoolean(elem.IsInverse)
		e.WriteBoolean(elem.IncludeSubtypes)
		e.WriteQualifiedName(elem.TargetName)
	}
}

func decodeBrowsePath(d *Decoder) (BrowsePath, error) {
	var p BrowsePath
	var err error

	p.StartingNode, err = d.ReadNodeID()
	if err != nil {
		return p, err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return p, err
	}
	if count > 0 {
		p.RelativePath.Elements = make([]RelativePathElement, count)
		for i := int32(0); i < count; i++ {
			elem := &p.RelativePath.Elements[i]
			elem.ReferenceTypeID, err = d.ReadNodeID()
			if err != nil {
				return p, err
			}
			elem.IsInverse, err = d.ReadBoolean()
			if err != nil {
				return p, err
			}
			elem.IncludeSubtypes, err = d.ReadBoolean()
			if err != nil {
				return p, err
			}
			elem.TargetName, err = d.ReadQualifiedName()
			if err != nil {
				return p, err
			}
		}
	}

	return p, nil
}

func encodeBrowsePathResult(e *Encoder, r *BrowsePathResult) {
	e.WriteStatusCode(r.StatusCode)

	if r.Targets == nil {
		e.WriteInt32(-1)
	} else {
		e.WriteInt32(int32(len(r.Targets)))
		for i := range r.Targets {
			e.WriteExpandedNodeID(r.Targets[i].TargetID)
			e.WriteUInt32(r.Targets[i].RemainingPathIndex)
		}
	}
}

func decodeBrowsePathResult(d *Decoder) (BrowsePathResult, error) {
	var r BrowsePathResult
	var err error

	r.StatusCode, err = d.ReadStatusCode()
	if err != nil {
		return r, err
	}

	count, err := d.ReadInt32()
	if err != nil {
		return r, err
	}
	if count >= 0 {
		r.Targets = make([]BrowsePathTarget, count)
		for i := int32(0); i < count; i++ {
			r.Targets[i].TargetID, err = d.ReadExpandedNodeID()
			if err != nil {
				return r, err
			}
			r.Targets[i].RemainingPathIndex, err = d.ReadUInt32()
			if err != nil {
				return r, err
			}
		}
	}

	return r, nil
}

func decodeEndpointDescription(d *Decoder) (EndpointDescription, error) {
	var ep EndpointDescription
	var err error

	ep.EndpointURL, err = d.ReadString()
	if err != nil {
		return ep, err
	}

	// Server (ApplicationDescription)
	ep.Server.ApplicationURI, err = d.ReadString()
	if err != nil {
		return ep, err
	}
	ep.Server.ProductURI, err = d.ReadString()
	if err != nil {
		return ep, err
	}
	ep.Server.ApplicationName, err = d.ReadLocalizedText()
	if err != nil {
		return ep, err
	}
	appType, err := d.ReadUInt32()
	if err != nil {
		return ep, err
	}
	ep.Server.ApplicationType = ApplicationType(appType)
	ep.Server.GatewayServerURI, err = d.ReadString()
	if err != nil {
		return ep, err
	}
	ep.Server.DiscoveryProfileURI, err = d.ReadString()
	if err != nil {
		return ep, err
	}
	urlCount, err := d.ReadInt32()
	if err != nil {
		return ep, err
	}
	if urlCount > 0 {
		ep.Server.DiscoveryURLs = make([]string, urlCount)
		for i := int32(0); i < urlCount; i++ {
			ep.Server.DiscoveryURLs[i], err = d.ReadString()
			if err != nil {
				return ep, err
			}
		}
	}

	ep.ServerCertificate, err = d.ReadByteString()
	if err != nil {
		return ep, err
	}
	mode, err := d.ReadUInt32()
	if err != nil {
		return ep, err
	}
	ep.SecurityMode = MessageSecurityMode(mode)
	ep.SecurityPolicyURI, err = d.ReadString()
	if err != nil {
		return ep, err
	}

	tokenCount, err := d.ReadInt32()
	if err != nil {
		return ep, err
	}
	if tokenCount > 0 {
		ep.UserIdentityTokens = make([]UserTokenPolicy, tokenCount)
		for i := int32(0); i < tokenCount; i++ {
			tp := &ep.UserIdentityTokens[i]
			tp.PolicyID, err = d.ReadString()
			if err != nil {
				return ep, err
			}
			tokenType, err := d.ReadUInt32()
			if err != nil {
				return ep, err
			}
			tp.TokenType = UserTokenType(tokenType)
			tp.IssuedTokenType, err = d.ReadString()
			if err != nil {
				return ep, err
			}
			tp.IssuerEndpointURL, err = d.ReadString()
			if err != nil {
				return ep, err
			}
			tp.SecurityPolicyURI, err = d.ReadString()
			if err != nil {
				return ep, err
			}
		}
	}

	ep.TransportProfileURI, err = d.ReadString()
	if err != nil {
		return ep, err
	}
	ep.SecurityLevel, err = d.ReadByte()
	if err != nil {
		return ep, err
	}

	return ep, nil
}
