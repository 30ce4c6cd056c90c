package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/glustolibs/go-gd2/pkg/gd2"
)

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func onlineString(online bool) string {
	if online {
		return "Connected"
	}
	return "Disconnected"
}

func renderPeerTable(w io.Writer, peers []gd2.Peer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATE\tCLIENT ADDRESSES")
	for _, p := range peers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			p.ID, p.Name, onlineString(p.Online), strings.Join(p.ClientAddresses, ","))
	}
	tw.Flush()
}

func renderPeerDetail(w io.Writer, p *gd2.Peer) {
	fmt.Fprintf(w, "ID:               %s\n", p.ID)
	fmt.Fprintf(w, "Name:             %s\n", p.Name)
	fmt.Fprintf(w, "State:            %s\n", onlineString(p.Online))
	fmt.Fprintf(w, "Peer addresses:   %s\n", strings.Join(p.PeerAddresses, ","))
	fmt.Fprintf(w, "Client addresses: %s\n", strings.Join(p.ClientAddresses, ","))
	if zone, ok := p.Metadata["zone"]; ok {
		fmt.Fprintf(w, "Zone:             %s\n", zone)
	}
}

func renderVolumeTable(w io.Writer, vols []gd2.Volume) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSTATE\tTRANSPORT\tBRICKS")
	for _, v := range vols {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			v.Name, v.Type, v.State, v.Transport, len(gd2.AllBricks(&v)))
	}
	tw.Flush()
}

func renderVolumeDetail(w io.Writer, v *gd2.Volume) {
	fmt.Fprintf(w, "Name:      %s\n", v.Name)
	fmt.Fprintf(w, "ID:        %s\n", v.ID)
	fmt.Fprintf(w, "Type:      %s\n", v.Type)
	fmt.Fprintf(w, "State:     %s\n", v.State)
	fmt.Fprintf(w, "Transport: %s\n", v.Transport)
	for i, subvol := range v.Subvols {
		fmt.Fprintf(w, "Subvol %d (%s):\n", i, subvol.Type)
		for _, brick := range subvol.Bricks {
			line := brick.Host + ":" + brick.Path
			if brick.Type == "arbiter" {
				line += " (arbiter)"
			}
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	if len(v.Options) > 0 {
		fmt.Fprintln(w, "Options:")
		for k, val := range v.Options {
			fmt.Fprintf(w, "  %s: %s\n", k, val)
		}
	}
}

func renderBrickStatusTable(w io.Writer, statuses []gd2.BrickStatus) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BRICK\tONLINE\tPID\tPORT\tUSED\tFREE")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s:%s\t%t\t%d\t%d\t%s\t%s\n",
			s.Info.Host, s.Info.Path, s.Online, s.PID, s.Port,
			formatBytes(s.Size.Used), formatBytes(s.Size.Free))
	}
	tw.Flush()
}

func renderDeviceTable(w io.Writer, devs []gd2.Device) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tPEER\tSTATE\tSIZE\tAVAILABLE")
	for _, d := range devs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			d.Device, d.PeerID, d.State,
			formatBytes(d.TotalSize), formatBytes(d.AvailableSize))
	}
	tw.Flush()
}

func renderSnapTable(w io.Writer, lists []gd2.VolumeSnapList) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VOLUME\tSNAPSHOT\tCREATED")
	for _, list := range lists {
		for _, snap := range list.Snaps {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", list.Name, snap.SnapInfo.Name, snap.SnapInfo.CreatedAt)
		}
	}
	tw.Flush()
}
