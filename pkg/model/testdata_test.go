package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleManifest is written in canonical form, so serializing it
// reproduces the same bytes.
const sampleManifest = `<?xml version="1.0" encoding="UTF-8"?>
<?eclipse version="3.0"?>
<plugin
   id="org.example.core"
   name="%pluginName"
   version="1.2.0"
   provider-name="Example"
   class="org.example.core.Activator">

   <!-- libraries -->
   <runtime>
      <library name="core.jar">
         <export name="*"/>
      </library>
      <library name="lib/extra.jar" type="resource"/>
   </runtime>

   <!-- deps -->
   <requires>
      <import plugin="org.example.base" version="1.0.0" match="perfect"/>
      <import plugin="org.example.ui" export="true" optional="true"/>
   </requires>

   <extension-point id="views" name="Views" schema="schema/views.exsd"/>

   <extension id="main" point="org.example.core.views">
      <view id="v1" class="a.B">Some &amp; text</view>
      <category name="c">
         <item/>
      </category>
   </extension>

   <extension point="org.other.menus">
      <menu label="x"/>
   </extension>

   <custom flag="1"/>
</plugin>
`

const scenarioManifest = `<plugin id="x" version="1.0"><extension point="a"><child k="v"/></extension></plugin>`

func newLoaded(t *testing.T, doc string) *Model {
	t.Helper()
	m := New(DefaultOptions())
	require.NoError(t, m.Load(strings.NewReader(doc), false))
	return m
}

func serialize(t *testing.T, m *Model) string {
	t.Helper()
	out, err := m.Serialize()
	require.NoError(t, err)
	return string(out)
}

// recordEvents subscribes a recorder and returns a pointer to its events.
func recordEvents(m *Model) *[]ChangeEvent {
	var events []ChangeEvent
	m.Subscribe(ObserverFunc(func(ev ChangeEvent) {
		events = append(events, ev)
	}))
	return &events
}
