package ws281x

import (
	"fmt"
	"os"
	"sync"

	"github.com/rpi-ws281x/rpi-ws281x-go/sys"
)

// LibraryDirEnv names the environment variable holding the directory that
// contains libws281x.
const LibraryDirEnv = "WS281X_LIB_DIR"

// driver is the part of the native library a Controller calls.
type driver interface {
	Init(ws *sys.Ws2811) sys.Ws2811Return
	Render(ws *sys.Ws2811) sys.Ws2811Return
	Fini(ws *sys.Ws2811)
	Describe(code sys.Ws2811Return) string
}

type nativeDriver struct{}

func (nativeDriver) Init(ws *sys.Ws2811) sys.Ws2811Return   { return sys.Ws2811Init(ws) }
func (nativeDriver) Render(ws *sys.Ws2811) sys.Ws2811Return { return sys.Ws2811Render(ws) }
func (nativeDriver) Fini(ws *sys.Ws2811)                    { sys.Ws2811Fini(ws) }

func (nativeDriver) Describe(code sys.Ws2811Return) string {
	return sys.Ws2811GetReturnTStr(code)
}

var (
	loadOnce sync.Once
	loadErr  error
)

// loadNative opens the shared library on first use. A failure is sticky.
func loadNative() (driver, error) {
	loadOnce.Do(func() {
		if err := sys.Load(os.Getenv(LibraryDirEnv)); err != nil {
			loadErr = fmt.Errorf("ws281x: %w", err)
		}
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return nativeDriver{}, nil
}
