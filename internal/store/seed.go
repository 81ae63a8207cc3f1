package store

import "github.com/mmeshcher/suraksha-service/internal/model"

// SeedCustomers возвращает демонстрационные записи, устанавливаемые при первом запуске.
func SeedCustomers() []model.CustomerRecord {
	return []model.CustomerRecord{
		{
			ID:              "1",
			Name:            "Rajesh Kumar",
			Phone:           "+919876543210",
			Address:         "123 MG Road, Bangalore",
			ServiceDate:     "2024-01-15",
			ServiceType:     model.ServiceTypeBoth,
			Price:           2500,
			Notes:           "Annual maintenance",
			NextServiceDate: "2025-01-12",
		},
		{
			ID:              "2",
			Name:            "Priya Sharma",
			Phone:           "+918765432109",
			Address:         "456 HSR Layout, Bangalore",
			ServiceDate:     "2024-01-20",
			ServiceType:     model.ServiceTypeSump,
			Price:           1200,
			Notes:           "Deep cleaning required",
			NextServiceDate: "2025-01-10",
		},
		{
			ID:              "3",
			Name:            "Amit Patel",
			Phone:           "+917654321098",
			Address:         "789 Koramangala, Bangalore",
			ServiceDate:     "2024-02-05",
			ServiceType:     model.ServiceTypeTank,
			Price:           1800,
			NextServiceDate: "2025-01-11",
		},
		{
			ID:              "4",
			Name:            "Sunita Reddy",
			Phone:           "+916543210987",
			Address:         "321 Whitefield, Bangalore",
			ServiceDate:     "2024-02-12",
			ServiceType:     model.ServiceTypeBoth,
			Price:           3000,
			Notes:           "Emergency service",
			NextServiceDate: "2025-01-13",
		},
		{
			ID:              "5",
			Name:            "Vikram Singh",
			Phone:           "+915432109876",
			Address:         "654 Electronic City, Bangalore",
			ServiceDate:     "2024-02-18",
			ServiceType:     model.ServiceTypeSump,
			Price:           1500,
			NextServiceDate: "2025-01-14",
		},
	}
}
