package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/scoregraph/scoregraph/internal/adapters/http/api"
	engine "github.com/scoregraph/scoregraph/internal/app"
	"github.com/scoregraph/scoregraph/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("SCOREGRAPH_ADDR", ":8080")
			_ = os.Setenv("SCOREGRAPH_NEO4J_URI", "bolt://localhost:7687")
			_ = os.Setenv("SCOREGRAPH_NEO4J_USERNAME", "neo4j")
			_ = os.Setenv("SCOREGRAPH_NEO4J_PASSWORD", "secret")
			defer func() {
				_ = os.Unsetenv("SCOREGRAPH_ADDR")
				_ = os.Unsetenv("SCOREGRAPH_NEO4J_URI")
				_ = os.Unsetenv("SCOREGRAPH_NEO4J_USERNAME")
				_ = os.Unsetenv("SCOREGRAPH_NEO4J_PASSWORD")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Neo4jURI, convey.ShouldEqual, "bolt://localhost:7687")
			})
		})

		convey.Convey("When testing engine creation", func() {
			convey.Convey("Then the engine should be creatable with default options", func() {
				eng := engine.New()
				convey.So(eng, convey.ShouldNotBeNil)
			})

			convey.Convey("And with custom caps", func() {
				eng := engine.New(
					engine.WithQueryTimeout(5*time.Second),
					engine.WithTopLimit(3),
					engine.WithTeamFanout(12),
				)
				convey.So(eng, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			eng := engine.New()
			mux := http.NewServeMux()
			api.NewServer(eng, eng).Register(context.Background(), mux)

			srv := &http.Server{
				Addr:              ":0",
				Handler:           mux,
				ReadTimeout:       readTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			convey.Convey("Then the server should carry the expected timeouts", func() {
				convey.So(srv.ReadTimeout, convey.ShouldEqual, 10*time.Second)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, 30*time.Second)
				convey.So(srv.IdleTimeout, convey.ShouldEqual, 60*time.Second)
			})
		})
	})
}
