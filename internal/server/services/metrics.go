package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shareme_uploads_total",
		Help: "Upload pipeline runs by result.",
	}, []string{"result"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shareme_upload_bytes_total",
		Help: "Bytes accepted by object storage.",
	})

	sharesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shareme_shares_total",
		Help: "Share-by-email attempts by result.",
	}, []string{"result"})
)
