package opensprinkler

// APIOverview is the static quick reference served as a resource.
const APIOverview = `# OpenSprinkler API Quick Reference

## Authentication
Every endpoint takes a ` + "`pw`" + ` parameter holding the MD5 hex digest of the
device password. This server adds it to every request.

## Result Codes
| Code | Meaning |
|------|---------|
| 1 | Success |
| 2 | Unauthorized |
| 3 | Mismatch (password) |
| 16 | Data Missing |
| 17 | Out of Range |
| 18 | Data Format Error |
| 32 | Page Not Found |
| 48 | Not Permitted |
| 64 | Upload Failed |

## Program Flag Bitfield
| Bits | Meaning |
|------|---------|
| 0 | Enable (1=enabled) |
| 1 | Use weather (1=yes) |
| 2-3 | Restriction: 0=none, 1=odd, 2=even |
| 4-5 | Day type: 0=weekly, 1=single, 2=monthly, 3=interval |
| 6 | Start type: 0=repeating, 1=fixed |
| 7 | Date range enable |

## Start-time Encoding
- Standard: minute of day (0-1439)
- Sunset-based: bit13=1, bit12=sign, bits0-10=offset minutes
- Sunrise-based: bit14=1, bit12=sign, bits0-10=offset minutes
- Disabled: bit15=1

## Date Range Encoding
` + "`(month << 5) + day`" + `. Jan 1 = 33, Dec 31 = 415.

## Special Log Events (pid=0)
| sid | Meaning |
|-----|---------|
| s1 | Sensor 1 |
| s2 | Sensor 2 |
| rd | Rain delay |
| fl | Flow reading |
| wl | Watering level |

## Reboot Causes (lrbtc)
0=None, 1=Factory reset, 2=Button, 3=AP mode, 4=API/timer, 5=API reboot,
6=AP to client, 7=FW update, 8=Weather fail >24h, 9=Network fail, 10=NTP sync,
99=Power-on

## Special Station Types (st)
0=Standard, 1=RF, 2=Remote, 3=GPIO, 4=HTTP, 5=HTTPS, 6=OTC

## Sensor Types
| ID Range | Type |
|----------|------|
| 1-9 | RS485/Modbus |
| 10-49 | Analog (ASB) |
| 50-54 | OSPI analog |
| 60-61 | FYTA cloud |
| 90 | MQTT |
| 95 | ZigBee |
| 96 | BLE |
| 100 | Remote OS |
| 101-110 | Weather service |
| 1000-1003 | Sensor groups |
| 10000-10001 | Diagnostics |
`
