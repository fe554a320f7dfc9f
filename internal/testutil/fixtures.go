package testutil

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh server-style identifier.
func NewID() string {
	return uuid.NewString()
}

// EmptyResponse returns an empty response envelope.
func EmptyResponse() string {
	return `<vsResponse></vsResponse>`
}

// DatasourceFixture describes a datasource element for response fixtures.
type DatasourceFixture struct {
	ID          string
	Name        string
	ContentURL  string
	Type        string
	ProjectID   string
	ProjectName string
	OwnerID     string
	Tags        []string
	Certified   bool
	CreatedAt   string
	UpdatedAt   string
}

func (f DatasourceFixture) element() string {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<datasource id="%s" name="%s" contentUrl="%s" type="%s" isCertified="%t"`,
		f.ID, f.Name, f.ContentURL, f.Type, f.Certified,
	)
	if f.CreatedAt != "" {
		fmt.Fprintf(&sb, ` createdAt="%s"`, f.CreatedAt)
	}
	if f.UpdatedAt != "" {
		fmt.Fprintf(&sb, ` updatedAt="%s"`, f.UpdatedAt)
	}
	sb.WriteString(">")
	if f.ProjectID != "" {
		fmt.Fprintf(&sb, `<project id="%s" name="%s"/>`, f.ProjectID, f.ProjectName)
	}
	if f.OwnerID != "" {
		fmt.Fprintf(&sb, `<owner id="%s"/>`, f.OwnerID)
	}
	if len(f.Tags) > 0 {
		sb.WriteString("<tags>")
		for _, tag := range f.Tags {
			fmt.Fprintf(&sb, `<tag label="%s"/>`, tag)
		}
		sb.WriteString("</tags>")
	}
	sb.WriteString("</datasource>")
	return sb.String()
}

// DatasourceListResponse builds a paginated datasource list response body.
func DatasourceListResponse(pageNumber, pageSize, totalAvailable int, items ...DatasourceFixture) string {
	var sb strings.Builder
	sb.WriteString("<vsResponse>")
	fmt.Fprintf(&sb,
		`<pagination pageNumber="%d" pageSize="%d" totalAvailable="%d"/>`,
		pageNumber, pageSize, totalAvailable,
	)
	sb.WriteString("<datasources>")
	for _, item := range items {
		sb.WriteString(item.element())
	}
	sb.WriteString("</datasources></vsResponse>")
	return sb.String()
}

// DatasourceResponse builds a single-datasource response body.
func DatasourceResponse(item DatasourceFixture) string {
	return "<vsResponse><datasources>" + item.element() + "</datasources></vsResponse>"
}

// ConnectionFixture describes a connection element for response fixtures.
type ConnectionFixture struct {
	ID            string
	Type          string
	ServerAddress string
	ServerPort    string
	UserName      string
}

// ConnectionsResponse builds a connection list response body.
func ConnectionsResponse(conns ...ConnectionFixture) string {
	var sb strings.Builder
	sb.WriteString("<vsResponse><connections>")
	for _, conn := range conns {
		fmt.Fprintf(&sb,
			`<connection id="%s" type="%s" serverAddress="%s" serverPort="%s" userName="%s"/>`,
			conn.ID, conn.Type, conn.ServerAddress, conn.ServerPort, conn.UserName,
		)
	}
	sb.WriteString("</connections></vsResponse>")
	return sb.String()
}

// UploadSessionResponse builds a file upload session response body.
func UploadSessionResponse(sessionID string, fileSize int64) string {
	return fmt.Sprintf(
		`<vsResponse><fileUpload uploadSessionId="%s" fileSize="%d"/></vsResponse>`,
		sessionID, fileSize,
	)
}

// SignInResponse builds a sign-in response body.
func SignInResponse(token, siteID, siteContentURL string) string {
	return fmt.Sprintf(
		`<vsResponse><credentials token="%s"><site id="%s" contentUrl="%s"/></credentials></vsResponse>`,
		token, siteID, siteContentURL,
	)
}

// ErrorResponse builds a server error response body.
func ErrorResponse(code, summary, detail string) string {
	return fmt.Sprintf(
		`<vsResponse><error code="%s"><summary>%s</summary><detail>%s</detail></error></vsResponse>`,
		code, summary, detail,
	)
}
