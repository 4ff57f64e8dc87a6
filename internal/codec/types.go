package codec

import "encoding/xml"

// Wire shapes of the WPS 1.0.0 documents. Elements local to process
// descriptions are unqualified in the schema and matched by local name.

type xmlEmpty struct{}

type xmlLink struct {
	Href string `xml:"http://www.w3.org/1999/xlink href,attr"`
}

type xmlMetadata struct {
	Title string `xml:"http://www.w3.org/1999/xlink title,attr,omitempty"`
	Href  string `xml:"http://www.w3.org/1999/xlink href,attr,omitempty"`
	About string `xml:"about,attr,omitempty"`
}

type xmlDescription struct {
	Identifier string        `xml:"http://www.opengis.net/ows/1.1 Identifier"`
	Title      string        `xml:"http://www.opengis.net/ows/1.1 Title"`
	Abstract   string        `xml:"http://www.opengis.net/ows/1.1 Abstract,omitempty"`
	Metadata   []xmlMetadata `xml:"http://www.opengis.net/ows/1.1 Metadata"`
}

type xmlBoundingBox struct {
	CRS         string `xml:"crs,attr,omitempty"`
	Dimensions  int    `xml:"dimensions,attr,omitempty"`
	LowerCorner string `xml:"http://www.opengis.net/ows/1.1 LowerCorner"`
	UpperCorner string `xml:"http://www.opengis.net/ows/1.1 UpperCorner"`
}

type xmlException struct {
	Code    string   `xml:"exceptionCode,attr"`
	Locator string   `xml:"locator,attr,omitempty"`
	Texts   []string `xml:"http://www.opengis.net/ows/1.1 ExceptionText"`
}

type xmlExceptionReport struct {
	XMLName    xml.Name       `xml:"http://www.opengis.net/ows/1.1 ExceptionReport"`
	Version    string         `xml:"version,attr"`
	Lang       string         `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Exceptions []xmlException `xml:"http://www.opengis.net/ows/1.1 Exception"`
}

// Requests

type xmlAcceptVersions struct {
	Versions []string `xml:"http://www.opengis.net/ows/1.1 Version"`
}

type xmlGetCapabilities struct {
	XMLName        xml.Name           `xml:"http://www.opengis.net/wps/1.0.0 GetCapabilities"`
	Service        string             `xml:"service,attr"`
	Language       string             `xml:"language,attr,omitempty"`
	AcceptVersions *xmlAcceptVersions `xml:"http://www.opengis.net/wps/1.0.0 AcceptVersions"`
}

type xmlDescribeProcess struct {
	XMLName     xml.Name `xml:"http://www.opengis.net/wps/1.0.0 DescribeProcess"`
	Service     string   `xml:"service,attr"`
	Version     string   `xml:"version,attr"`
	Language    string   `xml:"language,attr,omitempty"`
	Identifiers []string `xml:"http://www.opengis.net/ows/1.1 Identifier"`
}

type xmlComplexData struct {
	MimeType string `xml:"mimeType,attr,omitempty"`
	Encoding string `xml:"encoding,attr,omitempty"`
	Schema   string `xml:"schema,attr,omitempty"`
	Content  string `xml:",innerxml"`
}

type xmlLiteralData struct {
	DataType string `xml:"dataType,attr,omitempty"`
	UOM      string `xml:"uom,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type xmlData struct {
	ComplexData     *xmlComplexData `xml:"http://www.opengis.net/wps/1.0.0 ComplexData"`
	LiteralData     *xmlLiteralData `xml:"http://www.opengis.net/wps/1.0.0 LiteralData"`
	BoundingBoxData *xmlBoundingBox `xml:"http://www.opengis.net/wps/1.0.0 BoundingBoxData"`
}

type xmlHeader struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type xmlBody struct {
	Content string `xml:",innerxml"`
}

type xmlBodyReference struct {
	Href      string `xml:"http://www.w3.org/1999/xlink href,attr"`
	PlainHref string `xml:"href,attr,omitempty"`
}

// xmlInputReference accepts both xlink:href and a bare href.
type xmlInputReference struct {
	Href          string            `xml:"http://www.w3.org/1999/xlink href,attr"`
	PlainHref     string            `xml:"href,attr,omitempty"`
	Method        string            `xml:"method,attr,omitempty"`
	MimeType      string            `xml:"mimeType,attr,omitempty"`
	Encoding      string            `xml:"encoding,attr,omitempty"`
	Schema        string            `xml:"schema,attr,omitempty"`
	Headers       []xmlHeader       `xml:"http://www.opengis.net/wps/1.0.0 Header"`
	Body          *xmlBody          `xml:"http://www.opengis.net/wps/1.0.0 Body"`
	BodyReference *xmlBodyReference `xml:"http://www.opengis.net/wps/1.0.0 BodyReference"`
}

type xmlInput struct {
	Identifier string             `xml:"http://www.opengis.net/ows/1.1 Identifier"`
	Title      string             `xml:"http://www.opengis.net/ows/1.1 Title,omitempty"`
	Abstract   string             `xml:"http://www.opengis.net/ows/1.1 Abstract,omitempty"`
	Reference  *xmlInputReference `xml:"http://www.opengis.net/wps/1.0.0 Reference"`
	Data       *xmlData           `xml:"http://www.opengis.net/wps/1.0.0 Data"`
}

type xmlDataInputs struct {
	Inputs []xmlInput `xml:"http://www.opengis.net/wps/1.0.0 Input"`
}

type xmlOutputDefinition struct {
	MimeType   string `xml:"mimeType,attr,omitempty"`
	Encoding   string `xml:"encoding,attr,omitempty"`
	Schema     string `xml:"schema,attr,omitempty"`
	UOM        string `xml:"uom,attr,omitempty"`
	Identifier string `xml:"http://www.opengis.net/ows/1.1 Identifier"`
}

type xmlDocumentOutputDefinition struct {
	MimeType    string `xml:"mimeType,attr,omitempty"`
	Encoding    string `xml:"encoding,attr,omitempty"`
	Schema      string `xml:"schema,attr,omitempty"`
	UOM         string `xml:"uom,attr,omitempty"`
	AsReference bool   `xml:"asReference,attr,omitempty"`
	Identifier  string `xml:"http://www.opengis.net/ows/1.1 Identifier"`
	Title       string `xml:"http://www.opengis.net/ows/1.1 Title,omitempty"`
	Abstract    string `xml:"http://www.opengis.net/ows/1.1 Abstract,omitempty"`
}

type xmlResponseDocument struct {
	StoreExecuteResponse bool                          `xml:"storeExecuteResponse,attr,omitempty"`
	Lineage              bool                          `xml:"lineage,attr,omitempty"`
	Status               bool                          `xml:"status,attr,omitempty"`
	Outputs              []xmlDocumentOutputDefinition `xml:"http://www.opengis.net/wps/1.0.0 Output"`
}

type xmlResponseForm struct {
	ResponseDocument *xmlResponseDocument `xml:"http://www.opengis.net/wps/1.0.0 ResponseDocument"`
	RawDataOutput    *xmlOutputDefinition `xml:"http://www.opengis.net/wps/1.0.0 RawDataOutput"`
}

type xmlExecute struct {
	XMLName      xml.Name         `xml:"http://www.opengis.net/wps/1.0.0 Execute"`
	Service      string           `xml:"service,attr"`
	Version      string           `xml:"version,attr"`
	Language     string           `xml:"language,attr,omitempty"`
	Identifier   string           `xml:"http://www.opengis.net/ows/1.1 Identifier"`
	DataInputs   *xmlDataInputs   `xml:"http://www.opengis.net/wps/1.0.0 DataInputs"`
	ResponseForm *xmlResponseForm `xml:"http://www.opengis.net/wps/1.0.0 ResponseForm"`
}

// Capabilities

type xmlKeywords struct {
	Keywords []string `xml:"http://www.opengis.net/ows/1.1 Keyword"`
}

type xmlServiceIdentification struct {
	Title              string       `xml:"http://www.opengis.net/ows/1.1 Title"`
	Abstract           string       `xml:"http://www.opengis.net/ows/1.1 Abstract,omitempty"`
	Keywords           *xmlKeywords `xml:"http://www.opengis.net/ows/1.1 Keywords"`
	ServiceType        string       `xml:"http://www.opengis.net/ows/1.1 ServiceType"`
	ServiceTypeVersion []string     `xml:"http://www.opengis.net/ows/1.1 ServiceTypeVersion"`
	Fees               string       `xml:"http://www.opengis.net/ows/1.1 Fees,omitempty"`
	AccessConstraints  []string     `xml:"http://www.opengis.net/ows/1.1 AccessConstraints"`
}

type xmlAddress struct {
	ElectronicMailAddress string `xml:"http://www.opengis.net/ows/1.1 ElectronicMailAddress"`
}

type xmlContactInfo struct {
	Address *xmlAddress `xml:"http://www.opengis.net/ows/1.1 Address"`
}

type xmlServiceContact struct {
	IndividualName string          `xml:"http://www.opengis.net/ows/1.1 IndividualName,omitempty"`
	ContactInfo    *xmlContactInfo `xml:"http://www.opengis.net/ows/1.1 ContactInfo"`
}

type xmlServiceProvider struct {
	ProviderName   string            `xml:"http://www.opengis.net/ows/1.1 ProviderName"`
	ProviderSite   *xmlLink          `xml:"http://www.opengis.net/ows/1.1 ProviderSite"`
	ServiceContact xmlServiceContact `xml:"http://www.opengis.net/ows/1.1 ServiceContact"`
}

type xmlHTTP struct {
	Get  *xmlLink `xml:"http://www.opengis.net/ows/1.1 Get"`
	Post *xmlLink `xml:"http://www.opengis.net/ows/1.1 Post"`
}

type xmlDCP struct {
	HTTP xmlHTTP `xml:"http://www.opengis.net/ows/1.1 HTTP"`
}

type xmlOperation struct {
	Name string `xml:"name,attr"`
	DCP  xmlDCP `xml:"http://www.opengis.net/ows/1.1 DCP"`
}

type xmlOperationsMetadata struct {
	Operations []xmlOperation `xml:"http://www.opengis.net/ows/1.1 Operation"`
}

type xmlProcessBrief struct {
	ProcessVersion string `xml:"http://www.opengis.net/wps/1.0.0 processVersion,attr"`
	xmlDescription
	Profiles []string `xml:"Profile"`
	WSDL     *xmlLink `xml:"WSDL"`
}

type xmlProcessOfferings struct {
	Processes []xmlProcessBrief `xml:"http://www.opengis.net/wps/1.0.0 Process"`
}

type xmlDefaultLanguage struct {
	Language string `xml:"http://www.opengis.net/ows/1.1 Language"`
}

type xmlSupportedLanguages struct {
	Languages []string `xml:"http://www.opengis.net/ows/1.1 Language"`
}

type xmlLanguages struct {
	Default   xmlDefaultLanguage    `xml:"http://www.opengis.net/wps/1.0.0 Default"`
	Supported xmlSupportedLanguages `xml:"http://www.opengis.net/wps/1.0.0 Supported"`
}

type xmlCapabilities struct {
	XMLName               xml.Name                  `xml:"http://www.opengis.net/wps/1.0.0 Capabilities"`
	Service               string                    `xml:"service,attr"`
	Version               string                    `xml:"version,attr"`
	Lang                  string                    `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	UpdateSequence        string                    `xml:"updateSequence,attr,omitempty"`
	ServiceIdentification *xmlServiceIdentification `xml:"http://www.opengis.net/ows/1.1 ServiceIdentification"`
	ServiceProvider       *xmlServiceProvider       `xml:"http://www.opengis.net/ows/1.1 ServiceProvider"`
	OperationsMetadata    *xmlOperationsMetadata    `xml:"http://www.opengis.net/ows/1.1 OperationsMetadata"`
	ProcessOfferings      xmlProcessOfferings       `xml:"http://www.opengis.net/wps/1.0.0 ProcessOfferings"`
	Languages             xmlLanguages              `xml:"http://www.opengis.net/wps/1.0.0 Languages"`
	WSDL                  *xmlLink                  `xml:"http://www.opengis.net/wps/1.0.0 WSDL"`
}

// Process descriptions

type xmlFormat struct {
	MimeType string `xml:"MimeType"`
	Encoding string `xml:"Encoding,omitempty"`
	Schema   string `xml:"Schema,omitempty"`
}

type xmlDefaultFormat struct {
	Format xmlFormat `xml:"Format"`
}

type xmlSupportedFormats struct {
	Formats []xmlFormat `xml:"Format"`
}

type xmlSupportedComplexData struct {
	MaximumMegabytes int                 `xml:"maximumMegabytes,attr,omitempty"`
	Default          xmlDefaultFormat    `xml:"Default"`
	Supported        xmlSupportedFormats `xml:"Supported"`
}

type xmlDataType struct {
	Reference string `xml:"http://www.opengis.net/ows/1.1 reference,attr,omitempty"`
	Name      string `xml:",chardata"`
}

type xmlDefaultUOM struct {
	UOM string `xml:"http://www.opengis.net/ows/1.1 UOM"`
}

type xmlSupportedUOMs struct {
	UOMs []string `xml:"http://www.opengis.net/ows/1.1 UOM"`
}

type xmlUOMs struct {
	Default   xmlDefaultUOM    `xml:"Default"`
	Supported xmlSupportedUOMs `xml:"Supported"`
}

type xmlRange struct {
	Closure string `xml:"http://www.opengis.net/ows/1.1 rangeClosure,attr,omitempty"`
	Minimum string `xml:"http://www.opengis.net/ows/1.1 MinimumValue,omitempty"`
	Maximum string `xml:"http://www.opengis.net/ows/1.1 MaximumValue,omitempty"`
}

type xmlAllowedValues struct {
	Values []string   `xml:"http://www.opengis.net/ows/1.1 Value"`
	Ranges []xmlRange `xml:"http://www.opengis.net/ows/1.1 Range"`
}

type xmlValuesReference struct {
	Reference  string `xml:"http://www.opengis.net/ows/1.1 reference,attr"`
	ValuesForm string `xml:"valuesForm,attr,omitempty"`
}

type xmlLiteralDescription struct {
	DataType        *xmlDataType        `xml:"http://www.opengis.net/ows/1.1 DataType"`
	UOMs            *xmlUOMs            `xml:"UOMs"`
	AllowedValues   *xmlAllowedValues   `xml:"http://www.opengis.net/ows/1.1 AllowedValues"`
	AnyValue        *xmlEmpty           `xml:"http://www.opengis.net/ows/1.1 AnyValue"`
	ValuesReference *xmlValuesReference `xml:"ValuesReference"`
	DefaultValue    string              `xml:"DefaultValue,omitempty"`
}

type xmlDefaultCRS struct {
	CRS string `xml:"CRS"`
}

type xmlSupportedCRSs struct {
	CRSs []string `xml:"CRS"`
}

type xmlBoundingBoxDescription struct {
	Default   xmlDefaultCRS    `xml:"Default"`
	Supported xmlSupportedCRSs `xml:"Supported"`
}

type xmlInputDescription struct {
	MinOccurs int `xml:"minOccurs,attr"`
	MaxOccurs int `xml:"maxOccurs,attr"`
	xmlDescription
	ComplexData     *xmlSupportedComplexData   `xml:"ComplexData"`
	LiteralData     *xmlLiteralDescription     `xml:"LiteralData"`
	BoundingBoxData *xmlBoundingBoxDescription `xml:"BoundingBoxData"`
}

type xmlOutputDescription struct {
	xmlDescription
	ComplexOutput     *xmlSupportedComplexData   `xml:"ComplexOutput"`
	LiteralOutput     *xmlLiteralDescription     `xml:"LiteralOutput"`
	BoundingBoxOutput *xmlBoundingBoxDescription `xml:"BoundingBoxOutput"`
}

type xmlDataInputDescriptions struct {
	Inputs []xmlInputDescription `xml:"Input"`
}

type xmlProcessOutputDescriptions struct {
	Outputs []xmlOutputDescription `xml:"Output"`
}

type xmlProcessDescription struct {
	ProcessVersion  string `xml:"http://www.opengis.net/wps/1.0.0 processVersion,attr"`
	StoreSupported  bool   `xml:"storeSupported,attr,omitempty"`
	StatusSupported bool   `xml:"statusSupported,attr,omitempty"`
	xmlDescription
	Profiles       []string                     `xml:"Profile"`
	WSDL           *xmlLink                     `xml:"WSDL"`
	DataInputs     *xmlDataInputDescriptions    `xml:"DataInputs"`
	ProcessOutputs xmlProcessOutputDescriptions `xml:"ProcessOutputs"`
}

type xmlProcessDescriptions struct {
	XMLName   xml.Name                `xml:"http://www.opengis.net/wps/1.0.0 ProcessDescriptions"`
	Service   string                  `xml:"service,attr"`
	Version   string                  `xml:"version,attr"`
	Lang      string                  `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	Processes []xmlProcessDescription `xml:"ProcessDescription"`
}

// Execute response

type xmlProcessStarted struct {
	PercentCompleted int    `xml:"percentCompleted,attr"`
	Message          string `xml:",chardata"`
}

type xmlProcessFailed struct {
	Report xmlExceptionReport `xml:"http://www.opengis.net/ows/1.1 ExceptionReport"`
}

type xmlStatus struct {
	CreationTime string             `xml:"creationTime,attr"`
	Accepted     *string            `xml:"http://www.opengis.net/wps/1.0.0 ProcessAccepted"`
	Started      *xmlProcessStarted `xml:"http://www.opengis.net/wps/1.0.0 ProcessStarted"`
	Paused       *xmlProcessStarted `xml:"http://www.opengis.net/wps/1.0.0 ProcessPaused"`
	Succeeded    *string            `xml:"http://www.opengis.net/wps/1.0.0 ProcessSucceeded"`
	Failed       *xmlProcessFailed  `xml:"http://www.opengis.net/wps/1.0.0 ProcessFailed"`
}

type xmlOutputReference struct {
	Href     string `xml:"href,attr"`
	MimeType string `xml:"mimeType,attr,omitempty"`
	Encoding string `xml:"encoding,attr,omitempty"`
	Schema   string `xml:"schema,attr,omitempty"`
}

type xmlOutputData struct {
	Identifier string              `xml:"http://www.opengis.net/ows/1.1 Identifier"`
	Title      string              `xml:"http://www.opengis.net/ows/1.1 Title,omitempty"`
	Abstract   string              `xml:"http://www.opengis.net/ows/1.1 Abstract,omitempty"`
	Reference  *xmlOutputReference `xml:"http://www.opengis.net/wps/1.0.0 Reference"`
	Data       *xmlData            `xml:"http://www.opengis.net/wps/1.0.0 Data"`
}

type xmlOutputDefinitions struct {
	Outputs []xmlDocumentOutputDefinition `xml:"http://www.opengis.net/wps/1.0.0 Output"`
}

type xmlProcessOutputs struct {
	Outputs []xmlOutputData `xml:"http://www.opengis.net/wps/1.0.0 Output"`
}

type xmlExecuteResponse struct {
	XMLName           xml.Name              `xml:"http://www.opengis.net/wps/1.0.0 ExecuteResponse"`
	Service           string                `xml:"service,attr"`
	Version           string                `xml:"version,attr"`
	Lang              string                `xml:"http://www.w3.org/XML/1998/namespace lang,attr,omitempty"`
	ServiceInstance   string                `xml:"serviceInstance,attr"`
	StatusLocation    string                `xml:"statusLocation,attr,omitempty"`
	Process           xmlProcessBrief       `xml:"http://www.opengis.net/wps/1.0.0 Process"`
	Status            xmlStatus             `xml:"http://www.opengis.net/wps/1.0.0 Status"`
	DataInputs        *xmlDataInputs        `xml:"http://www.opengis.net/wps/1.0.0 DataInputs"`
	OutputDefinitions *xmlOutputDefinitions `xml:"http://www.opengis.net/wps/1.0.0 OutputDefinitions"`
	ProcessOutputs    *xmlProcessOutputs    `xml:"http://www.opengis.net/wps/1.0.0 ProcessOutputs"`
}
