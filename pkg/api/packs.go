package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/windowseat/windowseat/pkg/skydf"
)

func (s *Server) listPacks(c *fiber.Ctx) error {
	summaries, err := s.packs.List()
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to list Flight Packs",
		})
	}

	if summaries == nil {
		summaries = []skydf.PackSummary{}
	}

	return c.JSON(summaries)
}

func (s *Server) getPack(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	pack, err := s.packs.Load(identifier)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to load Flight Pack",
		})
	}

	if pack == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Flight Pack matching Flight Identifier",
		})
	}

	return c.JSON(pack)
}

func (s *Server) downloadPack(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	pack, err := s.downloader.Download(c.Context(), identifier, func(status string, completed, total int) {
		log.Debug().
			Str("flight", skydf.NormaliseFlightID(identifier)).
			Str("status", status).
			Int("completed", completed).
			Int("total", total).
			Msg("Download progress")
	})
	if err != nil {
		c.SendStatus(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.SendStatus(fiber.StatusCreated)
	return c.JSON(fiber.Map{
		"id":               pack.ID,
		"checkpoints":      len(pack.Checkpoints),
		"has_offline_maps": pack.HasOfflineMaps,
		"has_audio":        pack.HasAudio,
	})
}

func (s *Server) deletePack(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	pack, err := s.packs.Load(identifier)
	if err == nil && pack == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Flight Pack matching Flight Identifier",
		})
	}

	if err := s.packs.Delete(identifier); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to delete Flight Pack",
		})
	}

	return c.JSON(fiber.Map{
		"deleted": skydf.NormaliseFlightID(identifier),
	})
}

func (s *Server) clearPacks(c *fiber.Ctx) error {
	if err := s.packs.Clear(); err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to clear Flight Packs",
		})
	}

	return c.JSON(fiber.Map{
		"cleared": true,
	})
}

func (s *Server) getPackMaps(c *fiber.Ctx) error {
	identifier := c.Params("identifier")

	pack, err := s.packs.Load(identifier)
	if err != nil || pack == nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Flight Pack matching Flight Identifier",
		})
	}

	hasMaps := false
	tileCount := 0
	var tileBytes int64
	if s.tiles != nil {
		hasMaps = s.tiles.HasOfflineMaps(pack.ID)

		if records, err := s.tiles.TilesForFlight(pack.ID); err == nil {
			tileCount = len(records)
			for _, record := range records {
				tileBytes += record.SizeBytes
			}
		}
	}

	return c.JSON(fiber.Map{
		"id":               pack.ID,
		"has_offline_maps": hasMaps,
		"tiles":            tileCount,
		"tile_bytes":       tileBytes,
	})
}

func (s *Server) getStats(c *fiber.Ctx) error {
	summaries, err := s.packs.List()
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to list Flight Packs",
		})
	}

	size, err := s.packs.SizeBytes()
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Failed to calculate storage size",
		})
	}

	return c.JSON(fiber.Map{
		"packs":      len(summaries),
		"size_bytes": size,
	})
}
