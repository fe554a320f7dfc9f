// Package requests builds the XML request bodies and multipart payloads the
// server expects. Endpoint packages compose these builders per call; no HTTP
// concerns live here.
package requests

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/vantage-bi/vantage-go/vantagetypes"
)

// XMLContentType is the content type for plain XML request bodies.
const XMLContentType = "text/xml"

// Multipart part names the server requires.
const (
	payloadPartName    = "request_payload"
	datasourcePartName = "vantage_datasource"
	chunkPartName      = "vantage_file"
)

// vsRequest is the envelope wrapping every XML request body.
type vsRequest struct {
	XMLName     xml.Name        `xml:"vsRequest"`
	Credentials *credentialsXML `xml:"credentials"`
	Datasource  *datasourceXML  `xml:"datasource"`
}

type credentialsXML struct {
	Name        string   `xml:"name,attr,omitempty"`
	Password    string   `xml:"password,attr,omitempty"`
	TokenName   string   `xml:"personalAccessTokenName,attr,omitempty"`
	TokenSecret string   `xml:"personalAccessTokenSecret,attr,omitempty"`
	Site        *siteXML `xml:"site"`
}

type siteXML struct {
	ContentURL string `xml:"contentUrl,attr"`
}

type datasourceXML struct {
	Name              string      `xml:"name,attr,omitempty"`
	Description       string      `xml:"description,attr,omitempty"`
	Certified         bool        `xml:"isCertified,attr,omitempty"`
	CertificationNote string      `xml:"certificationNote,attr,omitempty"`
	Project           *projectXML `xml:"project"`
	Owner             *ownerXML   `xml:"owner"`
}

type projectXML struct {
	ID string `xml:"id,attr"`
}

type ownerXML struct {
	ID string `xml:"id,attr"`
}

// SignIn builds the credentials body for a username/password sign-in.
func SignIn(username, password, contentURL string) ([]byte, error) {
	return marshal(&vsRequest{
		Credentials: &credentialsXML{
			Name:     username,
			Password: password,
			Site:     &siteXML{ContentURL: contentURL},
		},
	})
}

// SignInWithToken builds the credentials body for a personal access token sign-in.
func SignInWithToken(tokenName, tokenSecret, contentURL string) ([]byte, error) {
	return marshal(&vsRequest{
		Credentials: &credentialsXML{
			TokenName:   tokenName,
			TokenSecret: tokenSecret,
			Site:        &siteXML{ContentURL: contentURL},
		},
	})
}

// UpdateDatasource builds the body for a datasource update.
func UpdateDatasource(ds vantagetypes.Datasource) ([]byte, error) {
	return marshal(&vsRequest{Datasource: datasourceBody(ds)})
}

// PublishDatasource builds the XML portion of a publish body.
func PublishDatasource(ds vantagetypes.Datasource) ([]byte, error) {
	return marshal(&vsRequest{Datasource: datasourceBody(ds)})
}

func datasourceBody(ds vantagetypes.Datasource) *datasourceXML {
	body := &datasourceXML{
		Name:              ds.Name,
		Description:       ds.Description,
		Certified:         ds.Certified,
		CertificationNote: ds.CertificationNote,
	}
	if ds.ProjectID != "" {
		body.Project = &projectXML{ID: ds.ProjectID}
	}
	if ds.OwnerID != "" {
		body.Owner = &ownerXML{ID: ds.OwnerID}
	}
	return body
}

func marshal(req *vsRequest) ([]byte, error) {
	out, err := xml.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("requests: marshal body: %w", err)
	}
	return out, nil
}

// PublishPayload assembles the single-request publish body: a multipart/mixed
// message carrying the datasource XML plus the full file contents.
func PublishPayload(
	ds vantagetypes.Datasource,
	filename, contentType string,
	file io.Reader,
) (*bytes.Buffer, string, error) {
	payload, err := PublishDatasource(ds)
	if err != nil {
		return nil, "", err
	}
	return mixedPayload(payload, &filePart{
		name:        datasourcePartName,
		filename:    filename,
		contentType: contentType,
		contents:    file,
	})
}

// ChunkedPublishPayload assembles the publish body used after a chunked
// upload: the multipart message carries only the datasource XML, the file
// itself is referenced through the uploadSessionId query parameter.
func ChunkedPublishPayload(ds vantagetypes.Datasource) (*bytes.Buffer, string, error) {
	payload, err := PublishDatasource(ds)
	if err != nil {
		return nil, "", err
	}
	return mixedPayload(payload, nil)
}

// ChunkPayload assembles the body for appending one chunk to an upload session.
func ChunkPayload(chunk []byte) (*bytes.Buffer, string, error) {
	// The server requires an empty request payload part alongside the chunk.
	empty, err := marshal(&vsRequest{})
	if err != nil {
		return nil, "", err
	}
	return mixedPayload(empty, &filePart{
		name:        chunkPartName,
		filename:    "file",
		contentType: "application/octet-stream",
		contents:    bytes.NewReader(chunk),
	})
}

type filePart struct {
	name        string
	filename    string
	contentType string
	contents    io.Reader
}

// mixedPayload writes the request payload part and the optional file part
// into a multipart/mixed message.
func mixedPayload(xmlPayload []byte, file *filePart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, payloadPartName, payloadPartName))
	header.Set("Content-Type", XMLContentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("requests: create payload part: %w", err)
	}
	if _, err := part.Write(xmlPayload); err != nil {
		return nil, "", fmt.Errorf("requests: write payload part: %w", err)
	}

	if file != nil {
		header = textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.name, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err = w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("requests: create file part: %w", err)
		}
		if _, err := io.Copy(part, file.contents); err != nil {
			return nil, "", fmt.Errorf("requests: write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("requests: close multipart body: %w", err)
	}

	contentType := strings.Replace(w.FormDataContentType(), "form-data", "mixed", 1)
	return &buf, contentType, nil
}
