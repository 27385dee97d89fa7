package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

type runnerFunc func(ctx context.Context, id int64, data []byte) (string, error)

func (f runnerFunc) Parse(ctx context.Context, id int64, data []byte) (string, error) {
	return f(ctx, id, data)
}

type exporterFunc func(context.Context) ([]byte, error)

func (f exporterFunc) ExportCatalogXLSX(ctx context.Context) ([]byte, error) { return f(ctx) }

func dial(t *testing.T, runner Runner) *grpc.ClientConn {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lis := bufconn.Listen(1 << 20)
	srv, _ := New(
		NewParserServer(runner, logger),
		NewExportServer(exporterFunc(func(context.Context) ([]byte, error) { return []byte("PK"), nil }), logger),
		logger,
	)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func parse(ctx context.Context, conn *grpc.ClientConn, id string, pdf []byte) (*wrapperspb.StringValue, error) {
	if id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, DocumentIDHeader, id)
	}
	out := new(wrapperspb.StringValue)
	err := conn.Invoke(ctx, ParseMethod, wrapperspb.Bytes(pdf), out)
	return out, err
}

func TestParseReturnsRecordJSON(t *testing.T) {
	var gotID int64
	var gotReqID string
	conn := dial(t, runnerFunc(func(ctx context.Context, id int64, data []byte) (string, error) {
		gotID = id
		gotReqID = common.RequestIDFromContext(ctx)
		if string(data) != "%PDF-1.7" {
			t.Errorf("unexpected bytes %q", data)
		}
		return `{"skills":[{"id":1,"name":"sql"}]}`, nil
	}))

	out, err := parse(context.Background(), conn, "42", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.GetValue() != `{"skills":[{"id":1,"name":"sql"}]}` {
		t.Fatalf("value = %q", out.GetValue())
	}
	if gotID != 42 || gotReqID == "" {
		t.Fatalf("id=%d req_id=%q", gotID, gotReqID)
	}
}

func TestParseStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		id   string
		pdf  []byte
		err  error
		want codes.Code
	}{
		{"missing id", "", []byte("x"), nil, codes.InvalidArgument},
		{"bad id", "abc", []byte("x"), nil, codes.InvalidArgument},
		{"no bytes", "1", nil, nil, codes.InvalidArgument},
		{"not a pdf", "1", []byte("x"), common.ErrExtraction, codes.InvalidArgument},
		{"malformed", "1", []byte("x"), common.ErrMalformedResponse, codes.FailedPrecondition},
		{"upstream", "1", []byte("x"), common.Wrapf(common.ErrUpstream, errors.New("503"), "complete"), codes.Unavailable},
		{"persistence", "1", []byte("x"), common.ErrPersistence, codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn := dial(t, runnerFunc(func(context.Context, int64, []byte) (string, error) {
				return "", tc.err
			}))
			_, err := parse(context.Background(), conn, tc.id, tc.pdf)
			if status.Code(err) != tc.want {
				t.Fatalf("code = %v, want %v (%v)", status.Code(err), tc.want, err)
			}
		})
	}
}

func TestHealthAndExport(t *testing.T) {
	conn := dial(t, runnerFunc(func(context.Context, int64, []byte) (string, error) { return "", nil }))

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: ParserServiceName})
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Fatalf("status = %v", resp.GetStatus())
	}

	out := new(wrapperspb.BytesValue)
	if err := conn.Invoke(context.Background(), ExportCatalogMethod, &emptypb.Empty{}, out); err != nil {
		t.Fatalf("ExportCatalog: %v", err)
	}
	if string(out.GetValue()) != "PK" {
		t.Fatalf("export bytes = %q", out.GetValue())
	}
}
