package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/distatus/battery"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/events"
	"github.com/charlie0129/smcd/pkg/smc"
)

// Daemon serves SMC access over HTTP on a unix socket.
type Daemon struct {
	smc      *smc.AppleSMC
	conf     config.Config
	hub      *events.EventHub
	samplers *samplerSet

	// shutdown is closed when the HTTP server shuts down, ending event streams.
	shutdown     chan struct{}
	shutdownOnce sync.Once

	// batteries lists the system batteries. Replaced in tests.
	batteries func() ([]*battery.Battery, error)
}

// New creates a Daemon. The SMC policy table is taken from conf.
func New(c *smc.AppleSMC, conf config.Config) *Daemon {
	c.SetPolicies(conf.Policies())

	hub := events.NewEventHub()
	return &Daemon{
		smc:       c,
		conf:      conf,
		hub:       hub,
		samplers:  newSamplerSet(c, hub),
		shutdown:  make(chan struct{}),
		batteries: battery.GetAll,
	}
}

// Events returns the event hub the daemon publishes to.
func (d *Daemon) Events() *events.EventHub {
	return d.hub
}

func (d *Daemon) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))

	keys := router.Group("/keys")
	keys.GET("/:key", d.getKey)
	keys.PUT("/:key", d.putKey)
	keys.GET("/:key/info", d.getKeyInfo)

	router.GET("/adapter-info", d.getAdapterInfo)
	router.GET("/wake-timer", d.getWakeTimer)
	router.PUT("/wake-timer", d.primeWakeTimer)
	router.GET("/silent-running", d.getSilentRunning)

	router.PUT("/adapter", d.setAdapter)
	router.GET("/adapter", d.getAdapter)
	router.GET("/charging", d.getCharging)
	router.PUT("/charging", d.setCharging)
	router.GET("/magsafe-led", d.getMagSafeLed)
	router.PUT("/magsafe-led", d.setMagSafeLed)
	router.GET("/current-charge", d.getCurrentCharge)
	router.GET("/plugged-in", d.getPluggedIn)
	router.GET("/charging-control-capable", d.getChargingControlCapable)
	router.GET("/power-telemetry", d.getPowerTelemetry)
	router.GET("/battery-info", d.getBatteryInfo)

	router.GET("/config", d.getConfig)
	router.PUT("/prime-wake-timer", d.setPrimeWakeTimer)
	router.GET("/version", getVersion)
	router.GET("/events", d.streamEvents)

	return router
}

// Handler returns the HTTP handler serving the daemon API.
func (d *Daemon) Handler() http.Handler {
	return d.setupRoutes()
}

func (d *Daemon) closeStreams() {
	d.shutdownOnce.Do(func() { close(d.shutdown) })
}

// reload loads the config again and applies it.
func (d *Daemon) reload() error {
	if err := d.conf.Load(); err != nil {
		return err
	}
	d.smc.SetPolicies(d.conf.Policies())
	d.samplers.apply(d.conf.Samplers())
	d.hub.Publish(events.ConfigReloaded, d.conf.Samplers())
	return nil
}

// Run serves until SIGINT or SIGTERM.
func (d *Daemon) Run(unixSocketPath string, allowNonRoot bool) error {
	router := d.setupRoutes()

	logrus.WithFields(d.conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := d.reload()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(d.conf.LogrusFields()).Info("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(d.closeStreams)

	// A stale socket from a previous run would make Listen fail.
	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return err
	}

	if d.conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			return err
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Listen to system sleep notifications.
	go func() {
		err := listenNotifications(d)
		if err != nil {
			logrus.Errorf("failed to listen to system sleep notifications: %v", err)
		}
	}()

	d.samplers.apply(d.conf.Samplers())
	d.samplers.start()

	if d.smc.SupportsSilentRunning() {
		logrus.Info("controller supports silent running")
	}

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping samplers")
	<-d.samplers.stop().Done()

	logrus.Info("stopping listening notifications")
	stopListeningNotifications()

	logrus.Info("exiting")
	return nil
}
