package common

import (
	"fmt"
	"strings"
	"time"
)

// IsSentinel1 returns true if the product is named after a Sentinel-1 scene
func IsSentinel1(productName string) bool {
	return strings.HasPrefix(productName, "S1")
}

// GetDateFromProductId returns the acquisition date of a product named after a Sentinel-1 scene
func GetDateFromProductId(productName string) (time.Time, error) {
	format, err := Info(productName)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse("20060102", format["DATE"])
}

// Info parses the name of a product that starts with a Sentinel-1 scene name
// (SNAP keeps it as a prefix, e.g. <scene>_Orb_Stack_ifg)
func Info(productName string) (map[string]string, error) {
	if !IsSentinel1(productName) {
		return nil, fmt.Errorf("Info: not a Sentinel1 product: %s", productName)
	}
	if len(productName) < len("MMM_BB_TTTR_LFPP_YYYYMMDDTHHMMSS_YYYYMMDDTHHMMSS_OOOOOO_DDDDDD_CCCC") {
		return nil, fmt.Errorf("invalid Sentinel1 file name: %s", productName)
	}
	return map[string]string{
		"SCENE":            productName[0:67],
		"MISSION_ID":       productName[0:3],
		"MISSION_VERSION":  productName[2:3],
		"MODE":             productName[4:6],
		"PRODUCT_TYPE":     productName[7:10],
		"RESOLUTION":       productName[10:11],
		"PROCESSING_LEVEL": productName[12:13],
		"PRODUCT_CLASS":    productName[13:14],
		"POLARISATION":     productName[14:16],
		"DATE":             productName[17:25],
		"YEAR":             productName[17:21],
		"MONTH":            productName[21:23],
		"DAY":              productName[23:25],
		"TIME":             productName[26:32],
		"HOUR":             productName[26:28],
		"MINUTE":           productName[28:30],
		"SECOND":           productName[30:32],
		"ORBIT":            productName[49:55],
		"MISSION":          productName[56:62],
		"UNIQUE_ID":        productName[63:67],
	}, nil
}

/**
 * FormatBrackets replaces in <str> all {keys} of <info> by the corresponding value
 * keys must be one of SCENE, MISSION_ID, MODE, PRODUCT_TYPE, POLARISATION, DATE(YEAR/MONTH/DAY), TIME(HOUR/MINUTE/SECOND), ORBIT, MISSION, UNIQUE_ID
 */
func FormatBrackets(str string, infos ...map[string]string) string {
	for _, info := range infos {
		for k, v := range info {
			str = strings.ReplaceAll(str, "{"+k+"}", v)
		}
	}
	return str
}
