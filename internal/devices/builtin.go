package devices

import (
	"fmt"
	"strings"
)

// builtinDevices is the standard instrument table: twelve solenoid valves,
// eight diaphragm pumps and the needle motors. Aliases carry the names used
// by documents from the original configuration tool.
func builtinDevices() []Device {
	var devs []Device

	for n := 1; n <= 12; n++ {
		devs = append(devs, Device{
			Name:      fmt.Sprintf("SV%d", n),
			Kind:      KindValve,
			Label:     fmt.Sprintf("solenoid valve %d", n),
			CToken:    fmt.Sprintf("VALVE_SV%d", n),
			LuaHandle: fmt.Sprintf("valve.sv%d", n),
		})
	}

	for _, bank := range []string{"Q", "F"} {
		for n := 1; n <= 4; n++ {
			name := fmt.Sprintf("%s%d", bank, n)
			devs = append(devs, Device{
				Name:      name,
				Kind:      KindPump,
				Label:     "diaphragm pump " + name,
				CToken:    "DIAPHRAGM_PUMP_" + name,
				LuaHandle: fmt.Sprintf("pump.%s%d", strings.ToLower(bank), n),
				Aliases:   []string{"隔膜泵" + name},
			})
		}
	}

	motors := []struct {
		name, label, legacy, fault string
	}{
		{"needle_s_pump", "sample needle plunger pump", "样本针柱塞泵", ""},
		{"needle_r2_pump", "reagent needle plunger pump", "试剂针柱塞泵", ""},
		{"clearer_pump", "special cleaning solution pump", "特殊清洗液泵", ""},
		{"needle_s_x", "sample needle X axis", "样本针X轴", ""},
		{"needle_s_y", "sample needle Y axis", "样本针Y轴", ""},
		{"needle_s_z", "sample needle Z axis", "样本针Z轴", "MODULE_FAULT_NEEDLE_S_Z"},
		{"needle_r2_y", "reagent needle Y axis", "试剂针Y轴", ""},
		{"needle_r2_z", "reagent needle Z axis", "试剂针Z轴", ""},
	}
	for _, m := range motors {
		devs = append(devs, Device{
			Name:        m.name,
			Kind:        KindMotor,
			Label:       m.label,
			CToken:      "MOTOR_" + strings.ToUpper(m.name),
			LuaHandle:   "motor." + m.name,
			FaultModule: m.fault,
			Aliases:     []string{m.legacy},
		})
	}

	return devs
}

// WashAxis is the motor driven by the needle wash sequence.
const WashAxis = "needle_s_z"
