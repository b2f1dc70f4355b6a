package main

import (
	"feed-monitor/src/app"
	"feed-monitor/src/config"
	"feed-monitor/src/data_source/stream"
	"feed-monitor/src/grpc_control"
	"feed-monitor/src/interfaces"
	"feed-monitor/src/logger"
	"feed-monitor/src/models"
	"feed-monitor/src/monitor"
	"feed-monitor/src/network"
	"feed-monitor/src/server"
	"feed-monitor/src/sinks"

	"github.com/IBM/sarama"
)

// -----------------------------------------------------------------------------

// setup builds the monitor, its sinks and the control surfaces. The returned
// cleanup closes external clients and is safe to call twice.
func setup(cfg *config.Config, log *logger.Logger) ([]app.Service, func()) {
	var closers []func() error

	latest := sinks.NewLatestSink()
	reportSinks := []interfaces.IReportSink{latest}
	if cfg.Sinks.Console {
		reportSinks = append(reportSinks, sinks.NewConsoleSink(nil))
	}
	if cfg.Sinks.Redis.Enabled {
		client := sinks.NewRedisClient(cfg.Sinks.Redis)
		closers = append(closers, client.Close)
		reportSinks = append(reportSinks, sinks.NewRedisSink(client, cfg.Sinks.Redis.Channel))
		log.Info("Publishing reports to redis channel %s", cfg.Sinks.Redis.Channel)
	}
	if cfg.Sinks.Kafka.Enabled {
		producer, err := sarama.NewSyncProducer(cfg.Sinks.Kafka.Brokers, sinks.SaramaConfig())
		if err != nil {
			log.Error("Kafka sink disabled: %v", err)
		} else {
			kafkaSink := sinks.NewKafkaSink(producer, cfg.Sinks.Kafka.Topic)
			closers = append(closers, kafkaSink.Close)
			reportSinks = append(reportSinks, kafkaSink)
			log.Info("Publishing reports to kafka topic %s", cfg.Sinks.Kafka.Topic)
		}
	}

	var httpServer *server.Server
	if cfg.Server.Enabled {
		// Status provider is bound after the monitor exists
		httpServer = server.NewServer(cfg.MConfig, latest, nil, log.Named("Server"))
		reportSinks = append(reportSinks, httpServer)
	}

	netMgr := network.NewAsyncNetworkManager(cfg.Feed, log.Named("NetworkManager"))
	source := stream.NewWebSocketSource(cfg.Feed, netMgr, log.Named("WebSocketSource-"+cfg.Feed.Name))
	mon := monitor.NewMonitor(cfg.MConfig, source, reportSinks, otherMessages(log.Named("Observer")), log.Named("Monitor"))

	services := []app.Service{mon}
	if httpServer != nil {
		httpServer.SetStatusProvider(mon)
		services = append(services, httpServer)
	}
	if cfg.Grpc.Enabled {
		svc := grpc_control.NewControlService(latest, mon, mon, log.Named("ControlService"))
		services = append(services, grpc_control.NewServer(cfg.Grpc, svc, log.Named("GrpcServer")))
	}
	services = append(services, app.Interrupter{})

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warning("Cleanup: %v", err)
			}
		}
		closers = nil
	}
	return services, cleanup
}

// -----------------------------------------------------------------------------

// otherMessages logs non-pricing traffic at info level
func otherMessages(log *logger.Logger) interfaces.IMessageObserver {
	return interfaces.MessageObserverFunc(func(msg models.MInboundMessage) {
		kind := msg.Kind
		if kind == "" {
			kind = "untyped"
		}
		log.Info("Received %s message: %.200s", kind, msg.Raw)
	})
}
