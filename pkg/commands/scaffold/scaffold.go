// Package scaffold produces the fixed XML that wraps the generated commands
// of a chain file.
package scaffold

import (
	"fmt"
	"strings"
)

// Kind selects the header and metadata variant of a chain.
type Kind string

const (
	KindModel Kind = "Model"
	KindTIN   Kind = "TIN"
)

// ParseKind maps an output node's modelType to a Kind. Anything other than
// TIN is a Model chain.
func ParseKind(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), string(KindTIN)) {
		return KindTIN
	}
	return KindModel
}

// stamp is the export timestamp written into a chain header.
type stamp struct {
	date        string
	time        string
	exportGMT   string
	exportLocal string
	projectName string
	user        string
}

var stamps = map[Kind]stamp{
	KindModel: {
		date:        "2023-10-13",
		time:        "08:35:06",
		exportGMT:   "2023-10-12T21:35:06Z",
		exportLocal: "2023-10-13T08:35:06",
		projectName: "Master",
		user:        "Boxmon 12dPynode User",
	},
	KindTIN: {
		date:        "2024-01-16",
		time:        "20:57:27",
		exportGMT:   "2024-01-16T09:57:27Z",
		exportLocal: "2024-01-16T20:57:27",
		projectName: "Project",
		user:        "K132177",
	},
}

// XMLHeader returns the declaration and the opening xml12d element.
func XMLHeader(date, time string) []string {
	return []string{
		`<?xml version="1.0"?>`,
		fmt.Sprintf(`<xml12d xmlns="http://www.12d.com/schema/xml12d-10.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" language="English" version="1.0" date="%s" time="%s" xsi:schemaLocation="http://www.12d.com/schema/xml12d-10.0 http://www.12d.com/schema/xml12d-10.0/xml12d.xsd">`, date, time),
	}
}

// MetaDataModel returns the meta_data block of a Model chain.
func MetaDataModel(projectFolder, model string) []string {
	return metaData(stamps[KindModel], projectFolder, model)
}

// MetaDataTIN returns the meta_data block of a TIN chain.
func MetaDataTIN(projectFolder, model string) []string {
	return metaData(stamps[KindTIN], projectFolder, model)
}

func metaData(s stamp, projectFolder, model string) []string {
	return []string{
		"  <meta_data>",
		"    <units>",
		"      <metric>",
		"        <linear>metre</linear>",
		"        <area>square metre</area>",
		"        <volume>cubic metre</volume>",
		"        <temperature>celsius</temperature>",
		"        <pressure>millibars</pressure>",
		"        <angular>decimal degrees</angular>",
		"        <direction>decimal degrees</direction>",
		"      </metric>",
		"    </units>",
		"    <application>",
		"      <name>12d Model</name>",
		"      <manufacturer>12d Solutions Pty Ltd</manufacturer>",
		"      <manufacturer_url>www.12d.com</manufacturer_url>",
		"      <application>12d Model 15.0C1j</application>",
		"      <application_build>15.1.10.22</application_build>",
		`      <application_path>C:\Program Files\12d\12dmodel\15.00\nt.x64\12d.exe</application_path>`,
		"      <application_date_gmt>2023-06-16T00:33:18Z</application_date_gmt>",
		"      <application_date>2023-06-16T10:33:18</application_date>",
		"      <project_name>" + s.projectName + "</project_name>",
		"      <project_guid>{33C24EEB-4DA8-499f-B390-8960A7A2FF8D}</project_guid>",
		"      <project_folder>" + projectFolder + "</project_folder>",
		"      <client>Boxmon</client>",
		"      <dongle>ec514701fc</dongle>",
		"      <maintenance>active</maintenance>",
		"      <environment/>",
		`      <env4d>c:\12d\15.00\user\env.4d</env4d>`,
		"      <user>" + s.user + "</user>",
		"      <export_file_name>" + model + " Chain.chain</export_file_name>",
		"      <export_date_gmt>" + s.exportGMT + "</export_date_gmt>",
		"      <export_date>" + s.exportLocal + "</export_date>",
		"    </application>",
		"  </meta_data>",
	}
}

// ChainWrapper opens the Chain element.
func ChainWrapper() []string {
	return []string{
		"  <Chain>",
		"    <version>1</version>",
	}
}

// ChainSettings emits the non-interactive settings and opens Commands.
func ChainSettings() []string {
	return []string{
		"    <Settings>",
		"      <Parameter_File/>",
		"      <Prompt_for_parameters>false</Prompt_for_parameters>",
		"      <Always_record_for_parameters>false</Always_record_for_parameters>",
		"      <Interactive>false</Interactive>",
		"    </Settings>",
		"    <Commands>",
	}
}

// ChainClosing closes Commands, Chain and xml12d.
func ChainClosing() []string {
	return []string{
		"    </Commands>",
		"  </Chain>",
		"</xml12d>",
	}
}

// Open returns everything that precedes the first command of a chain.
func Open(kind Kind, projectFolder, model string) []string {
	s, ok := stamps[kind]
	if !ok {
		kind, s = KindModel, stamps[KindModel]
	}

	lines := XMLHeader(s.date, s.time)
	if kind == KindTIN {
		lines = append(lines, MetaDataTIN(projectFolder, model)...)
	} else {
		lines = append(lines, MetaDataModel(projectFolder, model)...)
	}
	lines = append(lines, ChainWrapper()...)
	return append(lines, ChainSettings()...)
}

// Wrap surrounds command lines with the opening and closing scaffolding.
func Wrap(kind Kind, projectFolder, model string, commands []string) []string {
	lines := Open(kind, projectFolder, model)
	lines = append(lines, commands...)
	return append(lines, ChainClosing()...)
}
