// Command i2c-console drives a firmware-attached I2C bus interactively
// over a serial link.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"gomaple/host/console"
	"gomaple/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	timeout = flag.Uint("timeout", 100, "Per-transfer timeout in ms (0 = wait forever)")
	verbose = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("device", *device).Msg("failed to open serial port")
	}
	defer port.Close()
	log.Info().Str("device", *device).Int("baud", *baud).Msg("connected")

	client := console.NewClient(port)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "quit", "exit", "q":
			return

		case "help", "?":
			printHelp()

		case "w":
			// w <addr> <byte> [byte ...]
			if len(parts) < 3 {
				fmt.Println("usage: w <addr> <byte> [byte ...]")
				continue
			}
			addr, data, err := parseAddrData(parts[1], parts[2:])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			res, err := client.Write(addr, data, uint32(*timeout))
			report(log, res, err, nil)

		case "r":
			// r <addr> <len>
			if len(parts) != 3 {
				fmt.Println("usage: r <addr> <len>")
				continue
			}
			addr, n, err := parseAddrLen(parts[1], parts[2])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			res, err := client.Read(addr, n, uint32(*timeout))
			report(log, res, err, lastData(res))

		case "wr":
			// wr <addr> <reg> <len>, register read with repeated start
			if len(parts) != 4 {
				fmt.Println("usage: wr <addr> <reg> <len>")
				continue
			}
			addr, reg, err := parseAddrData(parts[1], parts[2:3])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			n64, err := strconv.ParseUint(parts[3], 0, 16)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			res, err := client.WriteRead(addr, reg, uint16(n64), uint32(*timeout))
			report(log, res, err, lastData(res))

		case "scan":
			// Probe every 7-bit address with a zero-length write.
			found := 0
			for addr := uint16(0x08); addr < 0x78; addr++ {
				res, err := client.Write(addr, nil, uint32(*timeout))
				if err != nil {
					fmt.Println("error:", err)
					break
				}
				if res.Status == console.StatusOK {
					fmt.Printf("device at 0x%02X\n", addr)
					found++
				}
			}
			fmt.Printf("%d device(s) found\n", found)

		case "reset":
			if err := client.BusReset(); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("bus reset done")

		default:
			fmt.Printf("unknown command %q (try 'help')\n", parts[0])
		}
	}
}

func parseAddrData(addrStr string, byteStrs []string) (uint16, []byte, error) {
	addr, err := strconv.ParseUint(addrStr, 0, 16)
	if err != nil {
		return 0, nil, fmt.Errorf("bad address %q", addrStr)
	}
	data := make([]byte, 0, len(byteStrs))
	for _, s := range byteStrs {
		b, err := strconv.ParseUint(s, 0, 8)
		if err != nil {
			return 0, nil, fmt.Errorf("bad byte %q", s)
		}
		data = append(data, byte(b))
	}
	return uint16(addr), data, nil
}

func parseAddrLen(addrStr, lenStr string) (uint16, uint16, error) {
	addr, err := strconv.ParseUint(addrStr, 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad address %q", addrStr)
	}
	n, err := strconv.ParseUint(lenStr, 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad length %q", lenStr)
	}
	return uint16(addr), uint16(n), nil
}

func lastData(res *console.Result) []byte {
	if res == nil || len(res.Msgs) == 0 {
		return nil
	}
	return res.Msgs[len(res.Msgs)-1].Data
}

func report(log zerolog.Logger, res *console.Result, err error, data []byte) {
	if err != nil {
		log.Error().Err(err).Msg("transfer failed")
		return
	}
	switch res.Status {
	case console.StatusOK:
		if len(data) > 0 {
			fmt.Println(hex.Dump(data))
		} else {
			fmt.Println("ok")
		}
	case console.StatusProtocol:
		log.Warn().Uint32("error_flags", res.ErrorFlags).Msg("protocol error on the bus")
	case console.StatusTimeout:
		log.Warn().Msg("transfer timed out")
	default:
		log.Warn().Uint8("status", res.Status).Msg("device rejected the request")
	}
}

func printHelp() {
	fmt.Println(`Commands:
  w <addr> <byte> [byte ...]   write bytes to a device
  r <addr> <len>               read bytes from a device
  wr <addr> <reg> <len>        write register address, then read (repeated start)
  scan                         probe all 7-bit addresses
  reset                        run the bus recovery sequence
  quit                         exit`)
}
