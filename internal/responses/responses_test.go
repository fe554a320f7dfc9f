package responses

import (
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-bi/vantage-go/errors"
)

func TestCheckError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{
			name:       "200 OK",
			statusCode: http.StatusOK,
			body:       `<vsResponse></vsResponse>`,
		},
		{
			name:       "204 no content",
			statusCode: http.StatusNoContent,
			body:       "",
		},
		{
			name:       "404 with error envelope",
			statusCode: http.StatusNotFound,
			body:       `<vsResponse><error code="404007"><summary>Resource Not Found</summary><detail>Datasource could not be located</detail></error></vsResponse>`,
			wantErr:    errors.ErrNotFound,
		},
		{
			name:       "401 expired session",
			statusCode: http.StatusUnauthorized,
			body:       `<vsResponse><error code="401002"><summary>Unauthorized Access</summary><detail>Invalid authentication credentials</detail></error></vsResponse>`,
			wantErr:    errors.ErrUnauthorized,
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			body:       `<vsResponse><error code="403004"><summary>Forbidden</summary><detail>No permission</detail></error></vsResponse>`,
			wantErr:    errors.ErrPermissionDenied,
		},
		{
			name:       "409 conflict",
			statusCode: http.StatusConflict,
			body:       `<vsResponse><error code="409006"><summary>Conflict</summary><detail>Datasource already exists</detail></error></vsResponse>`,
			wantErr:    errors.ErrConflict,
		},
		{
			name:       "500 with unparseable body",
			statusCode: http.StatusInternalServerError,
			body:       "upstream proxy error",
			wantErr:    errors.ErrServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckError(tt.statusCode, []byte(tt.body))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var apiErr *errors.APIError
			require.True(t, stderrors.As(err, &apiErr))
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			assert.NotEmpty(t, apiErr.Summary)
		})
	}
}

func TestCheckError_ParsesErrorDetails(t *testing.T) {
	body := `<vsResponse><error code="404007"><summary>Resource Not Found</summary><detail>Datasource 'abc' could not be located</detail></error></vsResponse>`

	err := CheckError(http.StatusNotFound, []byte(body))
	require.Error(t, err)

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, "404007", apiErr.Code)
	assert.Equal(t, "Resource Not Found", apiErr.Summary)
	assert.Equal(t, "Datasource 'abc' could not be located", apiErr.Detail)
}

func TestParseDatasourceList(t *testing.T) {
	body := `<vsResponse>
		<pagination pageNumber="1" pageSize="100" totalAvailable="2"/>
		<datasources>
			<datasource id="ds-1" name="Sales" contentUrl="sales" type="postgres" isCertified="true" certificationNote="verified" createdAt="2026-01-15T10:30:00Z" updatedAt="2026-02-01T08:00:00Z">
				<project id="proj-1" name="Finance"/>
				<owner id="user-7"/>
				<tags><tag label="quarterly"/><tag label="finance"/></tags>
			</datasource>
			<datasource id="ds-2" name="Leads" contentUrl="leads" type="mysql"/>
		</datasources>
	</vsResponse>`

	items, err := ParseDatasourceList([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "ds-1", first.ID)
	assert.Equal(t, "Sales", first.Name)
	assert.Equal(t, "sales", first.ContentURL)
	assert.Equal(t, "postgres", first.Type)
	assert.True(t, first.Certified)
	assert.Equal(t, "verified", first.CertificationNote)
	assert.Equal(t, "proj-1", first.ProjectID)
	assert.Equal(t, "Finance", first.ProjectName)
	assert.Equal(t, "user-7", first.OwnerID)
	assert.Equal(t, []string{"quarterly", "finance"}, first.Tags)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), first.CreatedAt)

	second := items[1]
	assert.Equal(t, "ds-2", second.ID)
	assert.Empty(t, second.ProjectID)
	assert.True(t, second.CreatedAt.IsZero())
}

func TestParseDatasourceList_Empty(t *testing.T) {
	body := `<vsResponse><pagination pageNumber="1" pageSize="100" totalAvailable="0"/><datasources/></vsResponse>`

	items, err := ParseDatasourceList([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseDatasource(t *testing.T) {
	t.Run("bare datasource element", func(t *testing.T) {
		body := `<vsResponse><datasource id="ds-1" name="Sales"/></vsResponse>`

		ds, err := ParseDatasource([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "ds-1", ds.ID)
		assert.Equal(t, "Sales", ds.Name)
	})

	t.Run("wrapped in list element", func(t *testing.T) {
		body := `<vsResponse><datasources><datasource id="ds-1" name="Sales"/></datasources></vsResponse>`

		ds, err := ParseDatasource([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "ds-1", ds.ID)
	})

	t.Run("no datasource element", func(t *testing.T) {
		_, err := ParseDatasource([]byte(`<vsResponse></vsResponse>`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no datasource element")
	})

	t.Run("malformed XML", func(t *testing.T) {
		_, err := ParseDatasource([]byte(`<vsResponse><datasour`))
		assert.Error(t, err)
	})
}

func TestParsePagination(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		body := `<vsResponse><pagination pageNumber="3" pageSize="50" totalAvailable="120"/></vsResponse>`

		p, err := ParsePagination([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, 3, p.PageNumber)
		assert.Equal(t, 50, p.PageSize)
		assert.Equal(t, 120, p.TotalAvailable)
	})

	t.Run("absent", func(t *testing.T) {
		p, err := ParsePagination([]byte(`<vsResponse></vsResponse>`))
		require.NoError(t, err)
		assert.Zero(t, p.TotalAvailable)
	})
}

func TestParseConnections(t *testing.T) {
	body := `<vsResponse><connections>
		<connection id="conn-1" type="postgres" serverAddress="db.example.com" serverPort="5432" userName="reporting" embedPassword="true"/>
		<connection id="conn-2" type="sqlserver" serverAddress="mssql.example.com" serverPort="1433" userName="sa"/>
	</connections></vsResponse>`

	conns, err := ParseConnections([]byte(body))
	require.NoError(t, err)
	require.Len(t, conns, 2)

	assert.Equal(t, "conn-1", conns[0].ID)
	assert.Equal(t, "postgres", conns[0].Type)
	assert.Equal(t, "db.example.com", conns[0].ServerAddress)
	assert.Equal(t, "5432", conns[0].ServerPort)
	assert.Equal(t, "reporting", conns[0].UserName)
	assert.True(t, conns[0].EmbedPassword)
	assert.False(t, conns[1].EmbedPassword)
}

func TestParseUploadSession(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		body := `<vsResponse><fileUpload uploadSessionId="upload:abc123" fileSize="10485760"/></vsResponse>`

		session, err := ParseUploadSession([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "upload:abc123", session.ID)
		assert.Equal(t, int64(10485760), session.FileSize)
	})

	t.Run("absent", func(t *testing.T) {
		_, err := ParseUploadSession([]byte(`<vsResponse></vsResponse>`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no fileUpload element")
	})
}

func TestParseCredentials(t *testing.T) {
	t.Run("full credentials", func(t *testing.T) {
		body := `<vsResponse><credentials token="tok-xyz"><site id="site-1" contentUrl="marketing"/></credentials></vsResponse>`

		creds, err := ParseCredentials([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "tok-xyz", creds.Token)
		assert.Equal(t, "site-1", creds.SiteID)
		assert.Equal(t, "marketing", creds.SiteContentURL)
	})

	t.Run("missing credentials element", func(t *testing.T) {
		_, err := ParseCredentials([]byte(`<vsResponse></vsResponse>`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no credentials element")
	})
}
