package dataflash

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

const (
	testGPSID  = 5
	testBaroID = 6
)

// writeFMT appends a FMT frame defining a message layout.
func writeFMT(buf *bytes.Buffer, msgID byte, length byte, name, format, columns string) {
	buf.Write([]byte{magic1, magic2, fmtMsgID})

	payload := make([]byte, fmtPayloadLen)
	payload[0] = msgID
	payload[1] = length
	copy(payload[2:6], name)
	copy(payload[6:22], format)
	copy(payload[22:86], columns)
	buf.Write(payload)
}

// writeGPS appends a GPS frame with layout "QHILLe".
func writeGPS(buf *bytes.Buffer, timeUS uint64, week uint16, ms uint32, lat, lng int32, alt int32) {
	buf.Write([]byte{magic1, magic2, testGPSID})
	binary.Write(buf, binary.LittleEndian, timeUS)
	binary.Write(buf, binary.LittleEndian, week)
	binary.Write(buf, binary.LittleEndian, ms)
	binary.Write(buf, binary.LittleEndian, lat)
	binary.Write(buf, binary.LittleEndian, lng)
	binary.Write(buf, binary.LittleEndian, alt)
}

// writeBaro appends a BARO frame with layout "Qff".
func writeBaro(buf *bytes.Buffer, timeUS uint64, press, temp float32) {
	buf.Write([]byte{magic1, magic2, testBaroID})
	binary.Write(buf, binary.LittleEndian, timeUS)
	binary.Write(buf, binary.LittleEndian, press)
	binary.Write(buf, binary.LittleEndian, temp)
}

func buildTestLog() *bytes.Buffer {
	var buf bytes.Buffer
	// GPS: Q(8) + H(2) + I(4) + L(4) + L(4) + e(4) = 26 byte payload.
	writeFMT(&buf, testGPSID, 29, "GPS", "QHILLe", "TimeUS,GWk,GMS,Lat,Lng,Alt")
	// BARO: Q(8) + f(4) + f(4) = 16 byte payload.
	writeFMT(&buf, testBaroID, 19, "BARO", "Qff", "TimeUS,Press,Temp")

	writeGPS(&buf, 1_000_000, 2000, 259_200_000, -338_600_000, 1_512_100_000, 12_345)
	writeBaro(&buf, 1_500_000, 1013.25, 295.15)
	return &buf
}

func TestDecoder_Decode(t *testing.T) {
	records, err := NewDecoder().Decode(buildTestLog())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count = %d, want 2", len(records))
	}

	gps := records[0]
	if gps.Type != "GPS" {
		t.Fatalf("record 0 type = %q, want GPS", gps.Type)
	}
	if got, _ := gps.Field("Lat"); math.Abs(got-(-33.86)) > 1e-9 {
		t.Errorf("Lat = %v, want -33.86", got)
	}
	if got, _ := gps.Field("Lng"); math.Abs(got-151.21) > 1e-9 {
		t.Errorf("Lng = %v, want 151.21", got)
	}
	if got, _ := gps.Field("Alt"); math.Abs(got-123.45) > 1e-9 {
		t.Errorf("Alt = %v, want 123.45", got)
	}

	baro := records[1]
	if baro.Type != "BARO" {
		t.Fatalf("record 1 type = %q, want BARO", baro.Type)
	}
	if got, _ := baro.Field("Press"); math.Abs(got-1013.25) > 1e-4 {
		t.Errorf("Press = %v, want 1013.25", got)
	}
	if got, _ := baro.Field("Temp"); math.Abs(got-295.15) > 1e-4 {
		t.Errorf("Temp = %v, want 295.15", got)
	}
}

func TestDecoder_TimestampAnchoring(t *testing.T) {
	records, err := NewDecoder().Decode(buildTestLog())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// GPS week 2000 plus 3 days of milliseconds, minus the leap seconds:
	// 2000*604800 + 259200 + 315964800 - 18.
	const wantGPS = 1525823982.0
	if got := records[0].Timestamp; math.Abs(got-wantGPS) > 1e-6 {
		t.Errorf("GPS timestamp = %.6f, want %.6f", got, wantGPS)
	}

	// The barometer frame is half a second later on the TimeUS clock.
	if got := records[1].Timestamp; math.Abs(got-(wantGPS+0.5)) > 1e-6 {
		t.Errorf("BARO timestamp = %.6f, want %.6f", got, wantGPS+0.5)
	}
}

func TestDecoder_SkipsMalformedFrames(t *testing.T) {
	log := buildTestLog()

	// Garbage between frames, including a stray magic prefix with an unknown
	// message ID, must be skipped without losing the following frame.
	log.Write([]byte{0xFF, 0x00, magic1, magic2, 0x42})
	writeBaro(log, 2_000_000, 1010.0, 294.0)

	records, err := NewDecoder().Decode(log)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want 3", len(records))
	}
	if got, _ := records[2].Field("Press"); math.Abs(got-1010.0) > 1e-4 {
		t.Errorf("Press = %v, want 1010", got)
	}
}

func TestDecoder_BootRelativeWithoutGPSTime(t *testing.T) {
	var buf bytes.Buffer
	writeFMT(&buf, testBaroID, 19, "BARO", "Qff", "TimeUS,Press,Temp")
	writeBaro(&buf, 5_000_000, 1000.0, 290.0)

	records, err := NewDecoder().Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := records[0].Timestamp; got != 5.0 {
		t.Errorf("boot-relative timestamp = %v, want 5.0", got)
	}
}

func TestDecoder_EmptyLog(t *testing.T) {
	if _, err := NewDecoder().Decode(bytes.NewReader(nil)); err == nil {
		t.Fatalf("Decode() of empty log succeeded, want error")
	}
}
