// zxmock replays a realistic tracker session against a running
// collector: login, status, a GPS fix, a Wi-Fi scan, a heartbeat and a
// hibernation notice, printing every acknowledgement the server sends
// back.
package main

import (
	"flag"
	"fmt"
	"net"
	"time"
)

// Sample packets based on real device traffic
var session = []struct {
	name   string
	packet []byte
}{
	{"LOGIN", []byte{
		10,   // declared length
		0x01, // proto
		0x03, 0x57, 0x93, 0x00, 0x84, 0x90, 0x02, 0x42, // IMEI 0357930084900242
		0x11, // firmware version
	}},
	{"STATUS", []byte{
		6,    // declared length (firmware quirk: payload + 2)
		0x13, // proto
		0x50, // battery
		0x11, // firmware version
		0x08, // timezone
		0x04, // upload interval
	}},
	{"GPS_POSITIONING", []byte{
		19,   // declared length
		0x10, // proto
		0x15, 0x07, 0x1E, 0x0C, 0x1E, 0x2D, // device time 2021-07-30 12:30:45
		0x9A,                   // data length / satellites
		0x05, 0xA2, 0x6D, 0x40, // latitude magnitude
		0x01, 0x70, 0xE1, 0xB0, // longitude magnitude
		0x37,       // speed
		0x14, 0x5A, // flags: valid fix, heading 90
	}},
	{"WIFI_OFFLINE_POSITIONING", []byte{
		2,    // declared length: access point count
		0x17, // proto
		0x21, 0x07, 0x30, 0x12, 0x30, 0x45, // packed time 2021-07-30 12:30:45
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0x01, 0x2D, // AP 1: MAC + signal -45
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0x02, 0x3C, // AP 2: MAC + signal -60
		0x01,       // cell count
		0x01, 0x06, // MCC 262
		0x02,                         // MNC
		0x27, 0x5C, 0x44, 0x37, 0x3A, // cell: LAC, ID, signal
	}},
	{"HEARTBEAT", []byte{1, 0x08}},
	{"HIBERNATION", []byte{1, 0x14}},
}

func main() {
	addr := flag.String("addr", "localhost:4303", "collector address")
	pause := flag.Duration("pause", time.Second, "delay between packets")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Printf("Failed to connect to %s: %v\n", *addr, err)
		return
	}
	defer conn.Close()

	fmt.Printf("Connected to %s\n", *addr)

	buffer := make([]byte, 256)
	for _, step := range session {
		if _, err := conn.Write(step.packet); err != nil {
			fmt.Printf("Error sending %s: %v\n", step.name, err)
			return
		}
		fmt.Printf("-> %s: % x\n", step.name, step.packet)

		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, err := conn.Read(buffer)
		if err == nil && n > 0 {
			fmt.Printf("<- ack: % x\n", buffer[:n])
		}

		time.Sleep(*pause)
	}

	fmt.Println("Session complete")
}
