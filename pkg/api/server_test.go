package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/windowseat/windowseat/pkg/blobstore"
	"github.com/windowseat/windowseat/pkg/downloader"
	"github.com/windowseat/windowseat/pkg/narration"
	"github.com/windowseat/windowseat/pkg/packstore"
	"github.com/windowseat/windowseat/pkg/routesource"
	"github.com/windowseat/windowseat/pkg/skydf"
	"github.com/windowseat/windowseat/pkg/tilecache"
)

type stubTileFetcher struct{}

func (stubTileFetcher) FetchTile(ctx context.Context, z, x, y int) ([]byte, error) {
	return []byte(fmt.Sprintf("tile-%d-%d-%d", z, x, y)), nil
}

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	blobs := blobstore.NewMemoryStore()
	tiles := tilecache.NewCache(blobs, stubTileFetcher{}, nil)

	packs, err := packstore.NewStore(blobs, tiles)
	if err != nil {
		t.Fatalf("pack store: %v", err)
	}

	opts := downloader.DefaultOptions()
	opts.Tiles.ZoomLevels = []int{3, 4}

	d := downloader.New(routesource.NewSyntheticSource(), nil, narration.NewGenerator(nil, nil, blobs), packs, tiles, opts)

	return NewServer(packs, d, tiles).App()
}

func request(t *testing.T, app *fiber.App, method, target string) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return resp, body
}

func TestVersionEndpoint(t *testing.T) {
	app := testApp(t)

	resp, body := request(t, app, "GET", "/core/version")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["version"] != Version {
		t.Fatalf("version %q", payload["version"])
	}
}

func TestListPacksEmpty(t *testing.T) {
	app := testApp(t)

	resp, body := request(t, app, "GET", "/core/packs/")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	var summaries []skydf.PackSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected empty list, got %d", len(summaries))
	}
}

func TestGetPackNotFound(t *testing.T) {
	app := testApp(t)

	resp, _ := request(t, app, "GET", "/core/packs/ZZ999")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestDownloadAndFetchPack(t *testing.T) {
	app := testApp(t)

	resp, body := request(t, app, "POST", "/core/packs/BA117/download")
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("download status %d: %s", resp.StatusCode, body)
	}

	var created map[string]any
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created["id"] != "BA117" {
		t.Fatalf("created id %v", created["id"])
	}

	resp, body = request(t, app, "GET", "/core/packs/BA117")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("get status %d", resp.StatusCode)
	}

	var pack skydf.FlightPack
	if err := json.Unmarshal(body, &pack); err != nil {
		t.Fatalf("decode pack: %v", err)
	}
	if len(pack.Checkpoints) != 20 {
		t.Fatalf("checkpoints %d", len(pack.Checkpoints))
	}

	resp, body = request(t, app, "GET", "/core/packs/BA117/maps")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("maps status %d", resp.StatusCode)
	}

	var maps map[string]any
	if err := json.Unmarshal(body, &maps); err != nil {
		t.Fatalf("decode maps: %v", err)
	}
	if maps["has_offline_maps"] != true {
		t.Fatalf("expected offline maps, got %v", maps["has_offline_maps"])
	}
	if tiles, ok := maps["tiles"].(float64); !ok || tiles <= 0 {
		t.Fatalf("expected cached tiles, got %v", maps["tiles"])
	}
}

func TestDeletePack(t *testing.T) {
	app := testApp(t)

	if resp, _ := request(t, app, "DELETE", "/core/packs/BA117"); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("delete of missing pack should 404, got %d", resp.StatusCode)
	}

	request(t, app, "POST", "/core/packs/BA117/download")

	resp, _ := request(t, app, "DELETE", "/core/packs/BA117")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}

	resp, _ = request(t, app, "GET", "/core/packs/BA117")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("pack should be gone, got %d", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	app := testApp(t)

	request(t, app, "POST", "/core/packs/BA117/download")

	resp, body := request(t, app, "GET", "/core/stats")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("stats status %d", resp.StatusCode)
	}

	var stats map[string]float64
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["packs"] != 1 {
		t.Fatalf("pack count %v", stats["packs"])
	}
	if stats["size_bytes"] <= 0 {
		t.Fatalf("size %v", stats["size_bytes"])
	}
}
