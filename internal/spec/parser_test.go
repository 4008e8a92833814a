package spec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-route/docker-gateway-sync/internal/domain"
)

func observation(labels map[string]string, ports map[int]domain.HostAddress) domain.Container {
	return domain.Container{
		Id:      "c1",
		Name:    "web",
		Created: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Labels:  labels,
		Ports:   ports,
	}
}

func TestParseSingleDeclaration(t *testing.T) {
	c := observation(
		map[string]string{"gateway.domain.0": "svc.example.org:8080"},
		map[int]domain.HostAddress{8080: {IP: "10.1.2.3", Port: 32768}},
	)

	records, invalid := Parse(c, "gateway")
	require.Empty(t, invalid)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "svc.example.org", rec.Domain)
	assert.Equal(t, "10.1.2.3:32768", rec.Target)
	assert.Equal(t, domain.ProtocolHTTP, rec.Protocol)
	assert.Equal(t, "c1", rec.ContainerId)
	assert.Equal(t, "web", rec.ContainerName)
	assert.Equal(t, c.Created, rec.Created)
	assert.Equal(t, 0, rec.Order)
}

func TestParseValueGrammar(t *testing.T) {
	ports := map[int]domain.HostAddress{
		80:   {IP: "10.1.2.3", Port: 30080},
		8080: {IP: "10.1.2.3", Port: 32768},
		9443: {IP: "10.1.2.3", Port: 32769},
	}

	tests := []struct {
		name       string
		value      string
		wantDomain string
		wantTarget string
		wantProto  domain.Protocol
		wantErr    string
	}{
		{
			name:       "domain only defaults to port 80 http",
			value:      "plain.example.org",
			wantDomain: "plain.example.org",
			wantTarget: "10.1.2.3:30080",
			wantProto:  domain.ProtocolHTTP,
		},
		{
			name:       "explicit port",
			value:      "app.example.org:8080",
			wantDomain: "app.example.org",
			wantTarget: "10.1.2.3:32768",
			wantProto:  domain.ProtocolHTTP,
		},
		{
			name:       "https qualifier",
			value:      "admin.example.org:9443@https",
			wantDomain: "admin.example.org",
			wantTarget: "10.1.2.3:32769",
			wantProto:  domain.ProtocolHTTPS,
		},
		{
			name:       "surrounding whitespace tolerated",
			value:      "  app.example.org:8080  ",
			wantDomain: "app.example.org",
			wantTarget: "10.1.2.3:32768",
			wantProto:  domain.ProtocolHTTP,
		},
		{
			name:    "empty value",
			value:   "",
			wantErr: "empty declaration",
		},
		{
			name:    "bad hostname",
			value:   "-bad.example.org:8080",
			wantErr: "invalid domain name",
		},
		{
			name:    "non-numeric port",
			value:   "app.example.org:eighty",
			wantErr: "invalid container port",
		},
		{
			name:    "port out of range",
			value:   "app.example.org:70000",
			wantErr: "invalid container port",
		},
		{
			name:    "unknown qualifier",
			value:   "app.example.org:8080@gopher",
			wantErr: "unsupported protocol",
		},
		{
			name:    "unpublished container port",
			value:   "app.example.org:5432",
			wantErr: "not published",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := observation(map[string]string{"gateway.domain.0": tt.value}, ports)
			records, invalid := Parse(c, "gateway")
			if tt.wantErr != "" {
				require.Empty(t, records)
				require.Len(t, invalid, 1)
				assert.Contains(t, invalid[0].Error(), tt.wantErr)
				assert.Equal(t, "gateway.domain.0", invalid[0].Label)
				return
			}
			require.Empty(t, invalid)
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantDomain, records[0].Domain)
			assert.Equal(t, tt.wantTarget, records[0].Target)
			assert.Equal(t, tt.wantProto, records[0].Protocol)
		})
	}
}

func TestParseOrdersByIndex(t *testing.T) {
	// Map iteration order must not leak into declaration order.
	c := observation(
		map[string]string{
			"gateway.domain.10": "ten.example.org:8080",
			"gateway.domain.2":  "two.example.org:8080",
			"gateway.domain.0":  "zero.example.org:8080",
		},
		map[int]domain.HostAddress{8080: {IP: "10.1.2.3", Port: 32768}},
	)

	records, invalid := Parse(c, "gateway")
	require.Empty(t, invalid)
	require.Len(t, records, 3)
	assert.Equal(t, "zero.example.org", records[0].Domain)
	assert.Equal(t, "two.example.org", records[1].Domain)
	assert.Equal(t, "ten.example.org", records[2].Domain)
	assert.Equal(t, []int{0, 2, 10}, []int{records[0].Order, records[1].Order, records[2].Order})
}

func TestParsePartialSuccess(t *testing.T) {
	// One malformed declaration never invalidates the container's others.
	c := observation(
		map[string]string{
			"gateway.domain.0": "good.example.org:8080",
			"gateway.domain.1": "bad..hostname:8080",
			"gateway.domain.2": "also-good.example.org:8080",
		},
		map[int]domain.HostAddress{8080: {IP: "10.1.2.3", Port: 32768}},
	)

	records, invalid := Parse(c, "gateway")
	require.Len(t, records, 2)
	require.Len(t, invalid, 1)
	assert.Equal(t, "gateway.domain.1", invalid[0].Label)
	assert.Equal(t, "good.example.org", records[0].Domain)
	assert.Equal(t, "also-good.example.org", records[1].Domain)
}

func TestParseDuplicateDomainWithinContainer(t *testing.T) {
	c := observation(
		map[string]string{
			"gateway.domain.0": "dup.example.org:8080",
			"gateway.domain.1": "dup.example.org:8080@https",
		},
		map[int]domain.HostAddress{8080: {IP: "10.1.2.3", Port: 32768}},
	)

	records, invalid := Parse(c, "gateway")
	require.Len(t, records, 1)
	assert.Equal(t, domain.ProtocolHTTP, records[0].Protocol, "lowest index wins")
	require.Len(t, invalid, 1)
	assert.Contains(t, invalid[0].Error(), "already declared")
}

func TestParseBadIndexSuffix(t *testing.T) {
	c := observation(
		map[string]string{
			"gateway.domain.first": "app.example.org:8080",
			"gateway.domain.-1":    "neg.example.org:8080",
		},
		map[int]domain.HostAddress{8080: {IP: "10.1.2.3", Port: 32768}},
	)

	records, invalid := Parse(c, "gateway")
	assert.Empty(t, records)
	assert.Len(t, invalid, 2)
}

func TestParseIgnoresForeignLabels(t *testing.T) {
	c := observation(
		map[string]string{
			"com.docker.compose.project": "demo",
			"gateway.enabled":            "true",
			"othertool.domain.0":         "other.example.org:8080",
		},
		map[int]domain.HostAddress{8080: {IP: "10.1.2.3", Port: 32768}},
	)

	records, invalid := Parse(c, "gateway")
	assert.Empty(t, records)
	assert.Empty(t, invalid)
}

func TestParseNoLabelsIsNotAnError(t *testing.T) {
	c := observation(nil, nil)
	records, invalid := Parse(c, "gateway")
	assert.Empty(t, records)
	assert.Empty(t, invalid)
}
