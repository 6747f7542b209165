// Package api exposes the flight pack library over HTTP for companion
// clients on the same device or network.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/windowseat/windowseat/pkg/downloader"
	"github.com/windowseat/windowseat/pkg/packstore"
	"github.com/windowseat/windowseat/pkg/tilecache"
)

const Version = "1.0"

type Server struct {
	packs      *packstore.Store
	downloader *downloader.Downloader
	tiles      *tilecache.Cache
}

// NewServer wires the API over an already-built pipeline. tiles may be nil
// when offline maps are disabled.
func NewServer(packs *packstore.Store, d *downloader.Downloader, tiles *tilecache.Cache) *Server {
	return &Server{
		packs:      packs,
		downloader: d,
		tiles:      tiles,
	}
}

// App builds the fiber application without starting a listener.
func (s *Server) App() *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", s.apiVersion)
	group.Get("stats", s.getStats)

	packsGroup := group.Group("/packs")
	packsGroup.Get("/", s.listPacks)
	packsGroup.Delete("/", s.clearPacks)
	packsGroup.Get("/:identifier", s.getPack)
	packsGroup.Delete("/:identifier", s.deletePack)
	packsGroup.Post("/:identifier/download", s.downloadPack)
	packsGroup.Get("/:identifier/maps", s.getPackMaps)

	return webApp
}

func (s *Server) SetupServer(listen string) error {
	return s.App().Listen(listen)
}

func (s *Server) apiVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": Version,
	})
}
