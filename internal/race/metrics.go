package race

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "race_connected_players",
		Help: "Number of currently logged-in players",
	})

	ActiveRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "race_active_rooms",
		Help: "Number of rooms currently registered",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "race_commands_total",
		Help: "Total client commands processed by command name",
	}, []string{"command"})

	CommandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "race_command_duration_seconds",
		Help:    "Time to handle each command type",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	RacesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "race_races_started_total",
		Help: "Total races started",
	})

	RacesFinished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "race_races_finished_total",
		Help: "Total races run to completion",
	})
)

func init() {
	prometheus.MustRegister(ConnectedPlayers)
	prometheus.MustRegister(ActiveRooms)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(RacesStarted)
	prometheus.MustRegister(RacesFinished)
}
