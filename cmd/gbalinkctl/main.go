// Command gbalinkctl is a headless front end for the gbalink cheat
// engine and lockstep link-cable simulator: it loads cheat files
// (plain or archived, named by -file or chosen in a file picker),
// imports a single code from the clipboard, and can run a scripted
// two-GBA lockstep demo.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.design/x/clipboard"

	"github.com/sqweek/dialog"
	"github.com/spf13/afero"

	"github.com/user-none/gbalink/cheat"
	"github.com/user-none/gbalink/sio"
	"github.com/user-none/gbalink/storage"
)

func main() {
	filePath := flag.String("file", "", "path to a cheat file (plain text or archive) to load")
	formatFlag := flag.String("type", "", "cheat format: autodetect, vba, gsa, par, or cb (defaults to the config file's defaultFormat)")
	useClipboard := flag.Bool("clipboard", false, "read a single cheat line from the clipboard instead of -file")
	pick := flag.Bool("pick", false, "open a file picker instead of -file")
	demo := flag.Bool("demo", false, "run a scripted two-GBA lockstep transfer and print the result")
	flag.Parse()

	if *demo {
		runDemo()
		return
	}

	fs := afero.NewOsFs()
	configPath, err := storage.DefaultConfigPath()
	if err != nil {
		log.Fatalf("gbalinkctl: %v", err)
	}
	configStore := storage.NewConfigStore(fs, configPath)
	if err := configStore.CreateIfMissing(); err != nil {
		log.Fatalf("gbalinkctl: config: %v", err)
	}
	config, err := configStore.Load()
	if err != nil {
		log.Fatalf("gbalinkctl: config: %v", err)
	}

	typeFlag := *formatFlag
	if typeFlag == "" {
		typeFlag = config.DefaultFormat
	}
	format, err := parseFormat(typeFlag)
	if err != nil {
		log.Fatalf("gbalinkctl: %v", err)
	}

	cache, err := storage.NewCache(config.CacheSize)
	if err != nil {
		log.Fatalf("gbalinkctl: cache: %v", err)
	}

	path := *filePath
	if *pick {
		selected, err := dialog.File().Title("Select cheat file").Load()
		if err != nil {
			log.Fatalf("gbalinkctl: file picker: %v", err)
		}
		path = selected
	}

	var set *cheat.Set

	if *useClipboard {
		if !config.ClipboardImport {
			log.Fatal("gbalinkctl: clipboard import is disabled in config.json")
		}
		line, err := readClipboardLine()
		if err != nil {
			log.Fatalf("gbalinkctl: %v", err)
		}
		set = cheat.NewSet("imported")
		if !set.AddLine(line, format) {
			log.Fatalf("gbalinkctl: clipboard line rejected: %q", line)
		}
	} else {
		if path == "" {
			log.Fatal("gbalinkctl: -file, -clipboard, or -pick is required")
		}
		set, err = loadFile(fs, cache, path, format)
		if err != nil {
			log.Fatalf("gbalinkctl: %v", err)
		}
	}

	for _, c := range set.Cheats {
		desc := cheat.PlainDescription(c.Description)
		if desc == "" {
			fmt.Printf("%08X %08X width=%d repeat=%d\n", c.Address, c.Operand, c.Width, c.Repeat)
		} else {
			fmt.Printf("%08X %08X width=%d repeat=%d  %s\n", c.Address, c.Operand, c.Width, c.Repeat, desc)
		}
	}
}

func parseFormat(name string) (cheat.Format, error) {
	switch strings.ToLower(name) {
	case "autodetect":
		return cheat.FormatAutodetect, nil
	case "vba":
		return cheat.FormatVBA, nil
	case "gsa":
		return cheat.FormatGameShark, nil
	case "par":
		return cheat.FormatProActionReplay, nil
	case "cb":
		return cheat.FormatCodeBreaker, nil
	default:
		return 0, fmt.Errorf("unknown -type %q", name)
	}
}

// loadFile de-archives and decodes path, returning a cached set for a
// digest already seen by cache rather than re-parsing it.
func loadFile(fs afero.Fs, cache *storage.Cache, path string, format cheat.Format) (*cheat.Set, error) {
	lines, err := storage.NewLoader(fs).Lines(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	digest := storage.Digest(lines)
	if cached, ok := cache.Get(digest); ok {
		return cached, nil
	}

	set := cheat.NewSet(path)
	set.AddFileLines(lines, format)
	cache.Put(digest, set)
	return set, nil
}

func readClipboardLine() (string, error) {
	if err := clipboard.Init(); err != nil {
		return "", fmt.Errorf("clipboard init: %w", err)
	}
	data := clipboard.Read(clipboard.FmtText)
	line := strings.TrimSpace(string(data))
	if line == "" {
		return "", fmt.Errorf("clipboard is empty")
	}
	return line, nil
}

// runDemo drives two in-memory GBAs through a full MULTI-mode transfer
// without any real hardware or a host game loop, printing the final
// SIOMULTI contents both sides converge on.
func runDemo() {
	host := &demoHost{}
	state := sio.NewTransferState(host)

	regsA := &demoRegisters{}
	regsB := &demoRegisters{}
	a := sio.NewNode(regsA)
	b := sio.NewNode(regsB)

	if !state.Attach(a) {
		log.Fatal("gbalinkctl: attach node 0 failed")
	}
	if !state.Attach(b) {
		log.Fatal("gbalinkctl: attach node 1 failed")
	}

	a.Load(sio.ModeMulti)
	b.Load(sio.ModeMulti)

	regsA.sendWord = 0xAAAA
	regsB.sendWord = 0xBBBB

	a.WriteMultiRegister(sio.RegSIOCNT, 0x0083)

	for i := 0; i < 8 && state.Phase() != sio.PhaseIdle; i++ {
		a.ProcessEvents(4096)
		b.ProcessEvents(4096)
	}

	fmt.Printf("node 0 sees: %04X %04X\n", regsA.multi[0], regsA.multi[1])
	fmt.Printf("node 1 sees: %04X %04X\n", regsB.multi[0], regsB.multi[1])
	os.Exit(0)
}

type demoHost struct{}

func (demoHost) Wait(mask uint32) bool                                { return true }
func (demoHost) Signal(mask uint32)                                   {}
func (demoHost) AddCycles(id int, cycles int32)                       {}
func (demoHost) UseCycles(id int, cycles int32) int32                 { return 0 }
func (demoHost) Unload(id int)                                        {}
func (demoHost) MultiTransferCycles(baud uint8, attached int) int32 { return 6400 }

type demoRegisters struct {
	sendWord  uint16
	data8     uint8
	data32Lo  uint16
	data32Hi  uint16
	multi     [4]uint16
	busy      bool
	multiID   int
	rcntReady bool
	irqOn     bool
	irqRaised bool
	idleSO    bool
	si        bool
}

func (r *demoRegisters) ReadSIOMLTSend() uint16          { return r.sendWord }
func (r *demoRegisters) ReadSIOData8() uint8             { return r.data8 }
func (r *demoRegisters) ReadSIOData32() (uint16, uint16) { return r.data32Lo, r.data32Hi }
func (r *demoRegisters) WriteMultiRegisters(values [4]uint16) { r.multi = values }
func (r *demoRegisters) WriteSIOData8(value uint16)      { r.data8 = uint8(value) }
func (r *demoRegisters) WriteSIOData32(lo, hi uint16)    { r.data32Lo, r.data32Hi = lo, hi }
func (r *demoRegisters) SetBusy(busy bool)               { r.busy = busy }
func (r *demoRegisters) SetMultiplayerID(id int)         { r.multiID = id }
func (r *demoRegisters) SetRCNTReady(ready bool)         { r.rcntReady = ready }
func (r *demoRegisters) IdleSO() bool                    { return r.idleSO }
func (r *demoRegisters) SetSI(si bool)                   { r.si = si }
func (r *demoRegisters) IRQEnabled() bool                { return r.irqOn }
func (r *demoRegisters) RaiseSIOIRQ()                    { r.irqRaised = true }
