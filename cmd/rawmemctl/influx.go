package main

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"go.uber.org/zap"

	"github.com/pavanmanishd/rawmem/hostmem"
)

var (
	influxURL    string
	influxOrg    string
	influxBucket string
	influxToken  string
)

// influxExporter writes one point per workload iteration. Write failures
// are logged once and further points are dropped.
type influxExporter struct {
	ctx       context.Context
	client    influxdb2.Client
	writeApi  api.WriteAPIBlocking
	allocator string
	failed    bool
}

func newInfluxExporter(ctx context.Context, url, token, org, bucket, allocator string) *influxExporter {
	if ctx == nil {
		ctx = context.Background()
	}
	client := influxdb2.NewClient(url, token)
	return &influxExporter{
		ctx:       ctx,
		client:    client,
		writeApi:  client.WriteAPIBlocking(org, bucket),
		allocator: allocator,
	}
}

func (e *influxExporter) Observe(iteration int, m hostmem.Metrics) {
	if e.failed {
		return
	}
	fields := m.Fields()
	fields["iteration"] = iteration
	fields["scratch_utilization"] = m.ScratchUtilization()
	p := influxdb2.NewPoint("rawmem_stress", map[string]string{"allocator": e.allocator}, fields, time.Now())
	if err := e.writeApi.WritePoint(e.ctx, p); err != nil {
		e.failed = true
		log.Warn("influx export disabled", zap.Error(err))
	}
}

func (e *influxExporter) Close() {
	e.client.Close()
}
