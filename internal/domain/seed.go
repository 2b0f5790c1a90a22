package domain

// Seed data applied when a seeded collection is empty or unreadable.
// Mirrors the factory's initial commissioning roster.

func SeedPersonnel() []Personnel {
	return []Personnel{
		{ID: "P-001", Name: "นายมานะ สุขสบาย", Title: "นาย", FirstName: "มานะ", LastName: "สุขสบาย", Role: RoleOperator, Info: "Production"},
		{ID: "P-002", Name: "นางสาววิภา ใจดี", Title: "นางสาว", FirstName: "วิภา", LastName: "ใจดี", Role: RoleSupervisor, Info: "Control"},
		{ID: "P-003", Name: "นายสมชาย มั่นคง", Title: "นาย", FirstName: "สมชาย", LastName: "มั่นคง", Role: RoleEngineer, Info: "Maintenance"},
	}
}

func SeedDepartments() []string {
	return []string{"Control", "Production", "Maintenance"}
}

func SeedMachines() []Machine {
	return []Machine{
		{
			ID:             "M-001",
			Name:           "Hydraulic Press A",
			Model:          "HPX-2200",
			Location:       "Line 1",
			Status:         StatusOperational,
			Efficiency:     100,
			LastInspection: "-",
			ChecklistTemplate: []ChecklistSection{
				{
					ID:    "sec-safety",
					Title: "Safety Systems",
					Items: []ChecklistItem{
						{ID: "chk-estop", Label: "Emergency stop responds", Type: ItemTypeBoolean},
						{ID: "chk-guard", Label: "Guard interlocks engaged", Type: ItemTypeBoolean},
					},
				},
				{
					ID:    "sec-hydraulics",
					Title: "Hydraulics",
					Items: []ChecklistItem{
						{ID: "chk-leak", Label: "No visible oil leaks", Type: ItemTypeBoolean},
						{ID: "chk-pressure", Label: "Working pressure", Type: ItemTypeNumeric, Unit: "bar"},
						{ID: "chk-oil-temp", Label: "Oil temperature", Type: ItemTypeNumeric, Unit: "°C"},
					},
				},
			},
		},
		{
			ID:             "M-002",
			Name:           "CNC Milling Center",
			Model:          "VMC-850",
			Location:       "Line 2",
			Status:         StatusOperational,
			Efficiency:     100,
			LastInspection: "-",
			ChecklistTemplate: []ChecklistSection{
				{
					ID:    "sec-spindle",
					Title: "Spindle",
					Items: []ChecklistItem{
						{ID: "chk-vibration", Label: "No abnormal vibration", Type: ItemTypeBoolean},
						{ID: "chk-spindle-temp", Label: "Spindle temperature", Type: ItemTypeNumeric, Unit: "°C"},
					},
				},
				{
					ID:    "sec-coolant",
					Title: "Coolant",
					Items: []ChecklistItem{
						{ID: "chk-coolant-level", Label: "Coolant level in range", Type: ItemTypeBoolean},
						{ID: "chk-coolant-conc", Label: "Coolant concentration", Type: ItemTypeNumeric, Unit: "%"},
					},
				},
			},
		},
		{
			ID:             "M-003",
			Name:           "Injection Molder B",
			Model:          "IM-450T",
			Location:       "Line 3",
			Status:         StatusOperational,
			Efficiency:     100,
			LastInspection: "-",
			ChecklistTemplate: []ChecklistSection{
				{
					ID:    "sec-barrel",
					Title: "Barrel & Nozzle",
					Items: []ChecklistItem{
						{ID: "chk-nozzle", Label: "Nozzle free of drool", Type: ItemTypeBoolean},
						{ID: "chk-barrel-temp", Label: "Barrel zone temperature", Type: ItemTypeNumeric, Unit: "°C"},
					},
				},
				{
					ID:    "sec-clamp",
					Title: "Clamping Unit",
					Items: []ChecklistItem{
						{ID: "chk-tiebar", Label: "Tie bars lubricated", Type: ItemTypeBoolean},
						{ID: "chk-clamp-force", Label: "Clamp force", Type: ItemTypeNumeric, Unit: "kN"},
					},
				},
			},
		},
	}
}
