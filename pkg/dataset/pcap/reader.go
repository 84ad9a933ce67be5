// Package pcap turns captured network packets into sample matrices.
package pcap

import (
	"context"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Reader reads a PCAP capture file and emits one feature row per packet.
type Reader struct {
	file      *os.File
	source    *gopacket.PacketSource
	extractor *FeatureExtractor
}

// NewFileReader opens a capture file for reading.
func NewFileReader(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	pr, err := pcapgo.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Reader{
		file:      file,
		source:    gopacket.NewPacketSource(pr, pr.LinkType()),
		extractor: NewFeatureExtractor(),
	}, nil
}

// Read returns every remaining packet as a feature row.
func (r *Reader) Read() ([][]float64, error) {
	var data [][]float64
	for packet := range r.source.Packets() {
		if row := r.extractor.Extract(packet); row != nil {
			data = append(data, row)
		}
	}
	return data, nil
}

// Stream returns a channel of feature rows for incremental scoring.
func (r *Reader) Stream(ctx context.Context) (<-chan []float64, error) {
	out := make(chan []float64, 1000)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case packet, ok := <-r.source.Packets():
				if !ok {
					return
				}
				row := r.extractor.Extract(packet)
				if row == nil {
					continue
				}
				select {
				case out <- row:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// packetFeatures holds one packet's numeric summary before flattening.
type packetFeatures struct {
	size        float64
	gap         float64
	protocol    float64
	srcPort     float64
	dstPort     float64
	tcpFlags    float64
	ttl         float64
	payloadSize float64
}

func (p packetFeatures) vector() []float64 {
	return []float64{
		p.size, p.gap, p.protocol, p.srcPort,
		p.dstPort, p.tcpFlags, p.ttl, p.payloadSize,
	}
}

// FeatureExtractor converts packets to feature rows. It keeps the previous
// packet timestamp to derive inter-arrival gaps, so one extractor serves
// one capture.
type FeatureExtractor struct {
	prev time.Time
}

// NewFeatureExtractor creates a packet feature extractor.
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{}
}

// Extract converts a packet to a feature row.
func (e *FeatureExtractor) Extract(packet gopacket.Packet) []float64 {
	var p packetFeatures

	p.size = float64(len(packet.Data()))

	if md := packet.Metadata(); md != nil && !md.Timestamp.IsZero() {
		if !e.prev.IsZero() {
			p.gap = md.Timestamp.Sub(e.prev).Seconds()
		}
		e.prev = md.Timestamp
	}

	switch {
	case packet.Layer(layers.LayerTypeTCP) != nil:
		tcp := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
		p.protocol = float64(layers.IPProtocolTCP)
		p.srcPort = float64(tcp.SrcPort)
		p.dstPort = float64(tcp.DstPort)
		p.tcpFlags = tcpFlagBits(tcp)
	case packet.Layer(layers.LayerTypeUDP) != nil:
		udp := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		p.protocol = float64(layers.IPProtocolUDP)
		p.srcPort = float64(udp.SrcPort)
		p.dstPort = float64(udp.DstPort)
	case packet.Layer(layers.LayerTypeICMPv4) != nil:
		p.protocol = float64(layers.IPProtocolICMPv4)
	}

	if ipLayer := packet.Layer(layers.LayerTypeIPv4); ipLayer != nil {
		p.ttl = float64(ipLayer.(*layers.IPv4).TTL)
	}

	if app := packet.ApplicationLayer(); app != nil {
		p.payloadSize = float64(len(app.Payload()))
	}

	return p.vector()
}

// FeatureNames returns the column names of extracted rows.
func (e *FeatureExtractor) FeatureNames() []string {
	return []string{
		"packet_size",
		"inter_arrival_time",
		"protocol",
		"src_port",
		"dst_port",
		"tcp_flags",
		"ip_ttl",
		"payload_size",
	}
}

// tcpFlagBits packs the TCP flags into one numeric feature.
func tcpFlagBits(tcp *layers.TCP) float64 {
	var bits int
	for i, set := range []bool{tcp.SYN, tcp.ACK, tcp.FIN, tcp.RST, tcp.PSH, tcp.URG} {
		if set {
			bits |= 1 << i
		}
	}
	return float64(bits)
}
