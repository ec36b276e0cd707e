package loader

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"setlint/internal/session"
)

const fixtureXML = `<?xml version="1.0" encoding="UTF-8"?>
<Ableton Creator="Ableton Live 12.0">
 <LiveSet>
  <Tracks>
   <AudioTrack Id="1">
    <Name><UserName Value="Kick"/><EffectiveName Value="Kick"/></Name>
    <TrackGroupId Value="3"/>
    <DeviceChain>
     <Mixer>
      <Speaker><Manual Value="true"/></Speaker>
      <Volume><Manual Value="0.85"/></Volume>
      <Pan><Manual Value="-0.1"/></Pan>
     </Mixer>
     <AudioInputRouting><Target Value="AudioIn/External/S0"/></AudioInputRouting>
     <AudioOutputRouting><Target Value="AudioOut/Track.3/TrackIn"/></AudioOutputRouting>
     <DeviceChain>
      <Devices>
       <Eq8 Id="0">
        <On>
         <Manual Value="true"/>
         <AutomationTarget Id="101"/>
        </On>
        <Bands.0>
         <ParameterA>
          <IsOn><Manual Value="true"/></IsOn>
          <Freq><Manual Value="120"/></Freq>
          <Gain><Manual Value="-3.5"/></Gain>
         </ParameterA>
        </Bands.0>
       </Eq8>
       <PluginDevice Id="1">
        <On><Manual Value="false"/><AutomationTarget Id="102"/></On>
        <PluginDesc>
         <Vst3PluginInfo>
          <Name Value="Pro-L 2"/>
         </Vst3PluginInfo>
        </PluginDesc>
        <ProcessorState>4A5543 45</ProcessorState>
       </PluginDevice>
      </Devices>
     </DeviceChain>
    </DeviceChain>
    <AutomationEnvelopes>
     <Envelopes>
      <AutomationEnvelope Id="0">
       <EnvelopeTarget><PointeeId Value="102"/></EnvelopeTarget>
       <Automation>
        <Events>
         <FloatEvent Id="1" Time="0" Value="0"/>
         <FloatEvent Id="2" Time="4" Value="1"/>
        </Events>
       </Automation>
      </AutomationEnvelope>
     </Envelopes>
    </AutomationEnvelopes>
   </AudioTrack>
   <GroupTrack Id="3">
    <Name><EffectiveName Value="Drum Bus"/></Name>
    <TrackGroupId Value="-1"/>
    <DeviceChain>
     <Mixer>
      <Speaker><Manual Value="false"/></Speaker>
     </Mixer>
     <AudioOutputRouting><Target Value="AudioOut/Master"/></AudioOutputRouting>
    </DeviceChain>
   </GroupTrack>
   <MasterTrack>
    <Name><EffectiveName Value="Master"/></Name>
    <DeviceChain>
     <Mixer>
      <Speaker><Manual Value="true"/></Speaker>
     </Mixer>
    </DeviceChain>
   </MasterTrack>
  </Tracks>
 </LiveSet>
</Ableton>`

func loadFixture(t *testing.T) ([]session.Track, Meta) {
	t.Helper()
	tracks, meta, err := LoadReader(strings.NewReader(fixtureXML), Limits{}, nil)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	return tracks, meta
}

func trackByID(t *testing.T, tracks []session.Track, id session.TrackID) *session.Track {
	t.Helper()
	for i := range tracks {
		if tracks[i].ID == id {
			return &tracks[i]
		}
	}
	t.Fatalf("track %q not found", id)
	return nil
}

func TestLoadReaderTrackBasics(t *testing.T) {
	tracks, meta, err := LoadReader(strings.NewReader(fixtureXML), Limits{}, nil)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}
	if meta.TrackCount != 3 {
		t.Errorf("meta.TrackCount = %d, want 3", meta.TrackCount)
	}

	kick := trackByID(t, tracks, "1")
	if kick.Name != "Kick" {
		t.Errorf("name = %q, want Kick", kick.Name)
	}
	if kick.Kind != session.KindAudio {
		t.Errorf("kind = %q, want audio", kick.Kind)
	}
	if !kick.Active {
		t.Error("kick should be active")
	}
	if kick.ParentGroup != "3" {
		t.Errorf("parent group = %q, want 3", kick.ParentGroup)
	}
	if kick.Volume == nil || *kick.Volume != 0.85 {
		t.Errorf("volume = %v, want 0.85", kick.Volume)
	}
	if kick.Pan == nil || *kick.Pan != -0.1 {
		t.Errorf("pan = %v, want -0.1", kick.Pan)
	}

	bus := trackByID(t, tracks, "3")
	if bus.Kind != session.KindGroup {
		t.Errorf("kind = %q, want group", bus.Kind)
	}
	if bus.Active {
		t.Error("drum bus speaker is off; track should be inactive")
	}
	if bus.ParentGroup != "" {
		t.Errorf("parent group = %q, want none for -1", bus.ParentGroup)
	}

	master := trackByID(t, tracks, "master")
	if master.Kind != session.KindMaster {
		t.Errorf("kind = %q, want master", master.Kind)
	}
}

func TestLoadReaderRouting(t *testing.T) {
	tracks, _ := loadFixture(t)

	kick := trackByID(t, tracks, "1")
	if kick.Routing.InputKind != session.RouteExternal {
		t.Errorf("input kind = %q, want external", kick.Routing.InputKind)
	}
	if kick.Routing.OutputKind != session.RouteTrack || kick.Routing.Output != "3" {
		t.Errorf("output = %q/%q, want track/3", kick.Routing.OutputKind, kick.Routing.Output)
	}
	if kick.Routing.RawOutput != "AudioOut/Track.3/TrackIn" {
		t.Errorf("raw output = %q", kick.Routing.RawOutput)
	}

	bus := trackByID(t, tracks, "3")
	if bus.Routing.OutputKind != session.RouteMaster {
		t.Errorf("bus output kind = %q, want master", bus.Routing.OutputKind)
	}
	if bus.Routing.InputKind != session.RouteMissing {
		t.Errorf("bus input kind = %q, want missing", bus.Routing.InputKind)
	}
}

func TestLoadReaderDevices(t *testing.T) {
	tracks, meta := loadFixture(t)
	if meta.DeviceCount != 2 {
		t.Fatalf("meta.DeviceCount = %d, want 2", meta.DeviceCount)
	}

	kick := trackByID(t, tracks, "1")
	if len(kick.Devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(kick.Devices))
	}

	eq := kick.Devices[0]
	if eq.Tag != "Eq8" || eq.Format != session.FormatStock {
		t.Errorf("device 0 = %s/%s, want Eq8/stock", eq.Tag, eq.Format)
	}
	if eq.Enabled == nil || !*eq.Enabled {
		t.Error("eq should be enabled")
	}
	settings, ok := eq.Settings.(session.EQSettings)
	if !ok {
		t.Fatalf("eq settings type %T", eq.Settings)
	}
	if len(settings.Bands) != 1 {
		t.Fatalf("got %d bands, want 1", len(settings.Bands))
	}
	side := settings.Bands[0].A
	if side == nil || side.Freq == nil || *side.Freq != 120 {
		t.Errorf("band 0 freq = %+v, want 120", side)
	}
	if side.Gain == nil || *side.Gain != -3.5 {
		t.Errorf("band 0 gain = %v, want -3.5", side.Gain)
	}

	plug := kick.Devices[1]
	if plug.Format != session.FormatVST3 {
		t.Errorf("plugin format = %q, want vst3", plug.Format)
	}
	if plug.Name != "Pro-L 2" {
		t.Errorf("plugin name = %q", plug.Name)
	}
	if plug.Enabled == nil || *plug.Enabled {
		t.Error("plugin should be explicitly off")
	}
	if plug.State == nil {
		t.Fatal("plugin should carry opaque state")
	}
	if plug.State.Length != 4 {
		t.Errorf("state length = %d, want 4", plug.State.Length)
	}
	if plug.State.Role != "limiter" {
		t.Errorf("state role = %q, want limiter", plug.State.Role)
	}
	// The decoded blob spells JUCE.
	if len(plug.State.HintTags) != 1 || plug.State.HintTags[0] != "JUCE" {
		t.Errorf("hint tags = %v, want [JUCE]", plug.State.HintTags)
	}
}

func TestLoadReaderAutomationBindings(t *testing.T) {
	tracks, _ := loadFixture(t)
	kick := trackByID(t, tracks, "1")
	if len(kick.Bindings) != 1 {
		t.Fatalf("got %d bindings, want 1", len(kick.Bindings))
	}
	b := kick.Bindings[0]
	if b.Device != 1 || b.Param != session.ParamDeviceOn || b.TargetID != "102" {
		t.Errorf("binding = %+v", b)
	}
}

func TestLoadGzipAndPlain(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "set.xml")
	if err := os.WriteFile(plain, []byte(fixtureXML), 0o644); err != nil {
		t.Fatal(err)
	}
	tracks, meta, err := Load(plain, Limits{}, nil)
	if err != nil {
		t.Fatalf("Load plain: %v", err)
	}
	if meta.Compressed {
		t.Error("plain file reported as compressed")
	}
	if len(tracks) != 3 {
		t.Fatalf("plain: got %d tracks", len(tracks))
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(fixtureXML)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	als := filepath.Join(dir, "set.als")
	if err := os.WriteFile(als, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	tracks, meta, err = Load(als, Limits{}, nil)
	if err != nil {
		t.Fatalf("Load gzip: %v", err)
	}
	if !meta.Compressed {
		t.Error("gzip file not reported as compressed")
	}
	if len(tracks) != 3 {
		t.Fatalf("gzip: got %d tracks", len(tracks))
	}
	if meta.SHA256 == "" || meta.SizeBytes == 0 {
		t.Errorf("meta provenance missing: %+v", meta)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, _, err := LoadReader(strings.NewReader("not xml at all"), Limits{}, nil); err == nil {
		t.Fatal("expected decode error")
	}
}
