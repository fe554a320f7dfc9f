// Package responses parses the XML response envelopes returned by the server
// and maps error responses onto the module's typed errors.
package responses

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/vantage-bi/vantage-go/errors"
	"github.com/vantage-bi/vantage-go/vantagetypes"
)

// vsResponse is the envelope wrapping every XML response body.
type vsResponse struct {
	XMLName     xml.Name           `xml:"vsResponse"`
	Pagination  *paginationXML     `xml:"pagination"`
	Datasources *datasourceListXML `xml:"datasources"`
	Datasource  *datasourceXML     `xml:"datasource"`
	Connections *connectionListXML `xml:"connections"`
	FileUpload  *fileUploadXML     `xml:"fileUpload"`
	Credentials *credentialsXML    `xml:"credentials"`
	Error       *errorXML          `xml:"error"`
}

type paginationXML struct {
	PageNumber     int `xml:"pageNumber,attr"`
	PageSize       int `xml:"pageSize,attr"`
	TotalAvailable int `xml:"totalAvailable,attr"`
}

type datasourceListXML struct {
	Datasources []datasourceXML `xml:"datasource"`
}

type datasourceXML struct {
	ID                string      `xml:"id,attr"`
	Name              string      `xml:"name,attr"`
	ContentURL        string      `xml:"contentUrl,attr"`
	Type              string      `xml:"type,attr"`
	Description       string      `xml:"description,attr"`
	CreatedAt         string      `xml:"createdAt,attr"`
	UpdatedAt         string      `xml:"updatedAt,attr"`
	Certified         bool        `xml:"isCertified,attr"`
	CertificationNote string      `xml:"certificationNote,attr"`
	Project           *projectXML `xml:"project"`
	Owner             *ownerXML   `xml:"owner"`
	Tags              *tagListXML `xml:"tags"`
}

type projectXML struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type ownerXML struct {
	ID string `xml:"id,attr"`
}

type tagListXML struct {
	Tags []tagXML `xml:"tag"`
}

type tagXML struct {
	Label string `xml:"label,attr"`
}

type connectionListXML struct {
	Connections []connectionXML `xml:"connection"`
}

type connectionXML struct {
	ID            string `xml:"id,attr"`
	Type          string `xml:"type,attr"`
	ServerAddress string `xml:"serverAddress,attr"`
	ServerPort    string `xml:"serverPort,attr"`
	UserName      string `xml:"userName,attr"`
	EmbedPassword bool   `xml:"embedPassword,attr"`
}

type fileUploadXML struct {
	UploadSessionID string `xml:"uploadSessionId,attr"`
	FileSize        int64  `xml:"fileSize,attr"`
}

type credentialsXML struct {
	Token string   `xml:"token,attr"`
	Site  *siteXML `xml:"site"`
}

type siteXML struct {
	ID         string `xml:"id,attr"`
	ContentURL string `xml:"contentUrl,attr"`
}

type errorXML struct {
	Code    string `xml:"code,attr"`
	Summary string `xml:"summary"`
	Detail  string `xml:"detail"`
}

// Credentials holds the session established by a sign-in response.
type Credentials struct {
	Token          string
	SiteID         string
	SiteContentURL string
}

// CheckError inspects a response status and body and returns a typed error
// for non-2xx responses. A body that is not a parseable error envelope still
// yields an APIError carrying the status.
func CheckError(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	apiErr := &errors.APIError{StatusCode: statusCode}
	var env vsResponse
	if err := xml.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Summary = env.Error.Summary
		apiErr.Detail = env.Error.Detail
	}
	if apiErr.Summary == "" {
		apiErr.Summary = fmt.Sprintf("unexpected status %d", statusCode)
	}
	return apiErr
}

// ParseDatasourceList parses a datasource list response.
func ParseDatasourceList(body []byte) ([]vantagetypes.Datasource, error) {
	env, err := parse(body)
	if err != nil {
		return nil, err
	}

	var items []datasourceXML
	switch {
	case env.Datasources != nil:
		items = env.Datasources.Datasources
	case env.Datasource != nil:
		items = []datasourceXML{*env.Datasource}
	}

	out := make([]vantagetypes.Datasource, 0, len(items))
	for _, item := range items {
		out = append(out, item.toItem())
	}
	return out, nil
}

// ParseDatasource parses a single-datasource response.
func ParseDatasource(body []byte) (*vantagetypes.Datasource, error) {
	items, err := ParseDatasourceList(body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("responses: no datasource element in response")
	}
	ds := items[0]
	return &ds, nil
}

// ParsePagination parses the pagination element of a list response.
// A response without one yields a zero Pagination.
func ParsePagination(body []byte) (*vantagetypes.Pagination, error) {
	env, err := parse(body)
	if err != nil {
		return nil, err
	}
	if env.Pagination == nil {
		return &vantagetypes.Pagination{}, nil
	}
	return &vantagetypes.Pagination{
		PageNumber:     env.Pagination.PageNumber,
		PageSize:       env.Pagination.PageSize,
		TotalAvailable: env.Pagination.TotalAvailable,
	}, nil
}

// ParseConnections parses a connection list response.
func ParseConnections(body []byte) ([]vantagetypes.Connection, error) {
	env, err := parse(body)
	if err != nil {
		return nil, err
	}
	if env.Connections == nil {
		return nil, nil
	}

	out := make([]vantagetypes.Connection, 0, len(env.Connections.Connections))
	for _, conn := range env.Connections.Connections {
		out = append(out, vantagetypes.Connection{
			ID:            conn.ID,
			Type:          conn.Type,
			ServerAddress: conn.ServerAddress,
			ServerPort:    conn.ServerPort,
			UserName:      conn.UserName,
			EmbedPassword: conn.EmbedPassword,
		})
	}
	return out, nil
}

// ParseUploadSession parses a file upload session response.
func ParseUploadSession(body []byte) (*vantagetypes.UploadSession, error) {
	env, err := parse(body)
	if err != nil {
		return nil, err
	}
	if env.FileUpload == nil {
		return nil, fmt.Errorf("responses: no fileUpload element in response")
	}
	return &vantagetypes.UploadSession{
		ID:       env.FileUpload.UploadSessionID,
		FileSize: env.FileUpload.FileSize,
	}, nil
}

// ParseCredentials parses a sign-in response.
func ParseCredentials(body []byte) (*Credentials, error) {
	env, err := parse(body)
	if err != nil {
		return nil, err
	}
	if env.Credentials == nil || env.Credentials.Token == "" {
		return nil, fmt.Errorf("responses: no credentials element in response")
	}

	creds := &Credentials{Token: env.Credentials.Token}
	if env.Credentials.Site != nil {
		creds.SiteID = env.Credentials.Site.ID
		creds.SiteContentURL = env.Credentials.Site.ContentURL
	}
	return creds, nil
}

func parse(body []byte) (*vsResponse, error) {
	var env vsResponse
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("responses: unmarshal response: %w", err)
	}
	return &env, nil
}

func (d datasourceXML) toItem() vantagetypes.Datasource {
	item := vantagetypes.Datasource{
		ID:                d.ID,
		Name:              d.Name,
		ContentURL:        d.ContentURL,
		Type:              d.Type,
		Description:       d.Description,
		Certified:         d.Certified,
		CertificationNote: d.CertificationNote,
		CreatedAt:         parseTime(d.CreatedAt),
		UpdatedAt:         parseTime(d.UpdatedAt),
	}
	if d.Project != nil {
		item.ProjectID = d.Project.ID
		item.ProjectName = d.Project.Name
	}
	if d.Owner != nil {
		item.OwnerID = d.Owner.ID
	}
	if d.Tags != nil {
		for _, tag := range d.Tags.Tags {
			item.Tags = append(item.Tags, tag.Label)
		}
	}
	return item
}

// parseTime parses the server's RFC 3339 timestamps. Malformed or absent
// values map to the zero time rather than failing the whole response.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
